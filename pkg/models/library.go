package models

// LibraryRecord is the canonical registry entry for one physical library.
//
// Records are created by the NLSS statistics ingest (source 1) and later
// annotated with the matching data4library code (source 2) by the
// reconciliation pass. A record is created exactly once; after that only
// the missing cross-reference code may be attached.
type LibraryRecord struct {
	ID        int64   `json:"id"`
	NlssCode  string  `json:"nlss_code,omitempty"` // source-native code from NLSS
	D4LCode   *int64  `json:"d4l_code,omitempty"`  // data4library code; nil until reconciled, set at most once
	Name      string  `json:"name"`
	Address   string  `json:"address,omitempty"`
	Tel       string  `json:"tel,omitempty"`
	Homepage  string  `json:"homepage,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// HasD4LCode reports whether the record has already been linked to its
// data4library counterpart.
func (r LibraryRecord) HasD4LCode() bool {
	return r.D4LCode != nil
}
