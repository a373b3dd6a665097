package dispatch

// Result is one search hit with a speakable snippet.
type Result struct {
	Title   string
	Link    string
	Snippet string
}

// SessionState owns the mutable search state for one listening session: the
// current result set, the playback index, and the last searched query. It is
// only ever touched by the dispatcher goroutine.
type SessionState struct {
	results   []Result
	index     int
	lastQuery string
}

func NewSessionState() *SessionState {
	return &SessionState{}
}

// Replace swaps in a new result set and resets the playback index.
func (s *SessionState) Replace(results []Result) {
	s.results = results
	s.index = 0
}

// Advance moves the playback index forward one entry. It reports whether the
// new index still refers to a result; the index may run past the end, in
// which case playback stays silent until the next search resets it.
func (s *SessionState) Advance() bool {
	s.index++
	return s.index < len(s.results)
}

// Current returns the result at the playback index, if any.
func (s *SessionState) Current() (Result, bool) {
	if s.index < 0 || s.index >= len(s.results) {
		return Result{}, false
	}
	return s.results[s.index], true
}

func (s *SessionState) LastQuery() string {
	return s.lastQuery
}

func (s *SessionState) SetLastQuery(q string) {
	s.lastQuery = q
}
