package models

// Maintainability is radon's maintainability index for a file with its letter grade.
// The index is typically 0-100 but is unbounded below.
type Maintainability struct {
	Index float64 `json:"index" toon:"index"`
	Rank  string  `json:"rank" toon:"rank"`
}

// UnanalyzableMaintainability is reported when radon produced nothing for a file,
// for example because it is empty or does not parse.
var UnanalyzableMaintainability = Maintainability{Index: 0, Rank: "F"}

// SourceInfo holds radon's raw size counters for a file.
type SourceInfo struct {
	LOC            int `json:"loc" toon:"loc"`
	LLOC           int `json:"lloc" toon:"lloc"`
	SLOC           int `json:"sloc" toon:"sloc"`
	Comments       int `json:"comments" toon:"comments"`
	Multi          int `json:"multi" toon:"multi"`
	Blank          int `json:"blank" toon:"blank"`
	SingleComments int `json:"singleComments" toon:"singleComments"`
}

// Snapshot is the result of one refresh of a document.
type Snapshot struct {
	Ratings         []Rating        `json:"ratings" toon:"ratings"`
	Maintainability Maintainability `json:"maintainability" toon:"maintainability"`
	SourceInfo      SourceInfo      `json:"sourceInfo" toon:"sourceInfo"`
}
