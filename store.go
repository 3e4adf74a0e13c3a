package blitcast

import "sort"

// DataStore is the keyed table of animation timelines consulted before any
// fetch. It is owned by one Registry and touched only from the scheduler
// goroutine, so it needs no locking.
type DataStore struct {
	records map[string]*Timeline
}

// NewDataStore creates an empty store.
func NewDataStore() *DataStore {
	return &DataStore{records: make(map[string]*Timeline)}
}

// Put stores a timeline under key, replacing any previous record.
func (s *DataStore) Put(key string, tl *Timeline) {
	s.records[key] = tl
}

// Lookup returns the timeline stored under key.
func (s *DataStore) Lookup(key string) (*Timeline, bool) {
	tl, ok := s.records[key]
	return tl, ok
}

// Merge adds every record of a parsed bundle to the store.
func (s *DataStore) Merge(records map[string]*Timeline) {
	for k, tl := range records {
		s.records[k] = tl
	}
}

// MergeJSON parses a bundle and merges its valid records. The returned error
// lists records that were rejected.
func (s *DataStore) MergeJSON(data []byte) error {
	records, err := ParseBundle(data)
	s.Merge(records)
	return err
}

// Keys returns the stored keys in sorted order.
func (s *DataStore) Keys() []string {
	keys := make([]string, 0, len(s.records))
	for k := range s.records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of stored records.
func (s *DataStore) Len() int {
	return len(s.records)
}
