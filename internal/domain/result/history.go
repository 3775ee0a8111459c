package result

// Summary is one row of the history list. Level is the server's own label,
// shown verbatim.
type Summary struct {
	ResultID        ID     `json:"result_id"`
	File1Name       string `json:"file1_name"`
	File2Name       string `json:"file2_name"`
	PlagiarismScore Number `json:"plagiarism_score"`
	Level           string `json:"level"`
	CreatedAt       string `json:"created_at"`
}

// IsInternet reports whether the row is a web check.
func (s Summary) IsInternet() bool {
	return s.File2Name == WebSearchName
}

// HistoryPage is one page of the server's result list.
type HistoryPage struct {
	Results      []Summary `json:"results"`
	TotalResults int       `json:"total_results"`
	TotalPages   int       `json:"total_pages"`
	CurrentPage  int       `json:"current_page"`
	PerPage      int       `json:"per_page"`
}

// Remove drops id from the page after a confirmed delete.
// PRE: the server acknowledged deleting id
// POST: when id was listed, it is gone and TotalResults dropped by one, floored at 0
func (p *HistoryPage) Remove(id ID) bool {
	for i, s := range p.Results {
		if s.ResultID != id {
			continue
		}
		p.Results = append(p.Results[:i:i], p.Results[i+1:]...)
		p.TotalResults = max(0, p.TotalResults-1)
		return true
	}
	return false
}
