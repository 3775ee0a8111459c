package result

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// WebSearchName is the file2_name the server gives internet checks.
const WebSearchName = "Web Search"

// ErrNotObject is returned by Decode for payloads that are not JSON objects.
var ErrNotObject = errors.New("result payload is not a JSON object")

// Envelope carries the fields both server shapes share.
type Envelope struct {
	ResultID  ID     `json:"result_id"`
	File1Name string `json:"file1_name"`
	File2Name string `json:"file2_name"`
	Level     string `json:"level"`
	CreatedAt string `json:"created_at"`
}

// Raw is a server result in one of its two shapes: *CompareResult or
// *InternetResult. Normalize is the only code that switches on it.
type Raw interface {
	Common() Envelope
	isRaw()
}

// CompareResult is the two-file check payload.
type CompareResult struct {
	Envelope
	PlagiarismScore Number `json:"plagiarism_score"`
	TFIDFScore      Number `json:"tfidf_score"`
	JaccardScore    Number `json:"jaccard_score"`
	SequenceScore   Number `json:"sequence_score"`
}

// InternetResult is the single-file web check payload. A stored internet
// result fetched later carries plagiarism_score and tfidf_score too.
type InternetResult struct {
	Envelope
	OverallScore    Number     `json:"overall_score"`
	PlagiarismScore Number     `json:"plagiarism_score"`
	TFIDFScore      Number     `json:"tfidf_score"`
	JaccardScore    Number     `json:"jaccard_score"`
	SequenceScore   Number     `json:"sequence_score"`
	Matches         SourceList `json:"internet_matches"`
}

// Common implements Raw.
func (c *CompareResult) Common() Envelope { return c.Envelope }

// Common implements Raw.
func (i *InternetResult) Common() Envelope { return i.Envelope }

func (*CompareResult) isRaw()  {}
func (*InternetResult) isRaw() {}

// SourceMatch is one web source reported by an internet check.
type SourceMatch struct {
	Source string
	URL    string
	Score  Number
}

// SourceList is a list of web sources. Anything other than a JSON array
// decodes to an empty list.
type SourceList []SourceMatch

// UnmarshalJSON implements json.Unmarshaler.
func (l *SourceList) UnmarshalJSON(b []byte) error {
	var ms []SourceMatch
	if json.Unmarshal(b, &ms) != nil {
		ms = nil
	}
	*l = ms
	return nil
}

// UnmarshalJSON accepts score or similarity_score, and tolerates non-string
// source and url values by dropping them.
func (m *SourceMatch) UnmarshalJSON(b []byte) error {
	var aux struct {
		Source          json.RawMessage `json:"source"`
		URL             json.RawMessage `json:"url"`
		Score           Number          `json:"score"`
		SimilarityScore Number          `json:"similarity_score"`
	}
	*m = SourceMatch{}
	if err := json.Unmarshal(b, &aux); err != nil {
		// Non-object entries become an unlabeled zero match.
		return nil
	}
	m.Source = looseString(aux.Source)
	m.URL = looseString(aux.URL)
	m.Score = aux.Score.Or(aux.SimilarityScore)
	return nil
}

// fillBreakdown reads the live compare response, which nests component
// scores under "breakdown". Top-level fields win when both are present.
func (c *CompareResult) fillBreakdown(b json.RawMessage) {
	var bd struct {
		TFIDF    Number `json:"tfidf"`
		Jaccard  Number `json:"jaccard"`
		Sequence Number `json:"sequence"`
	}
	if json.Unmarshal(b, &bd) != nil {
		return
	}
	c.TFIDFScore = c.TFIDFScore.Or(bd.TFIDF)
	c.JaccardScore = c.JaccardScore.Or(bd.Jaccard)
	c.SequenceScore = c.SequenceScore.Or(bd.Sequence)
}

func looseString(b json.RawMessage) string {
	var s string
	if len(b) == 0 || json.Unmarshal(b, &s) != nil {
		return ""
	}
	return s
}

// Decode picks the variant from the payload's shape.
// A payload is an internet result when it carries overall_score or
// internet_matches, or names the web search as its second file. The live
// internet-check response lists its sources under "matches"; that key is read
// when internet_matches is absent.
// PRE: data is the unmodified response body
// POST: returns *CompareResult or *InternetResult, or an error for non-objects
func Decode(data []byte) (Raw, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil || keys == nil {
		return nil, ErrNotObject
	}

	_, hasOverall := keys["overall_score"]
	_, hasInternetMatches := keys["internet_matches"]
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode result envelope: %w", err)
	}

	if !hasOverall && !hasInternetMatches && env.File2Name != WebSearchName {
		var c CompareResult
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("decode compare result: %w", err)
		}
		if b, ok := keys["breakdown"]; ok {
			c.fillBreakdown(b)
		}
		return &c, nil
	}

	var i InternetResult
	if err := json.Unmarshal(data, &i); err != nil {
		return nil, fmt.Errorf("decode internet result: %w", err)
	}
	if raw, ok := keys["matches"]; ok && !hasInternetMatches && !bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		var ms SourceList
		if json.Unmarshal(raw, &ms) == nil {
			i.Matches = ms
		}
	}
	return &i, nil
}
