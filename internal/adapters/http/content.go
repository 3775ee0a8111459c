package web

// landingMarkdown is the public home page body.
const landingMarkdown = `# Plagiarism Checker

Check code and documents for copied content.

- **Compare two files** with TF-IDF, Jaccard and sequence matching.
- **Internet check** a single file and see the closest web sources with their similarity.
- **Download PDF reports** for every stored result.

Accepted files: .txt, .pdf, .docx, .py, .java, .c, .cpp, .js (up to 10MB).

[Log in](/login) or [create an account](/register) to start.
`

// methodologyMarkdown explains how a score is produced. Shown under every result.
const methodologyMarkdown = `### Methodology & Process

1. **Preprocessing**: text is normalized and cleaned (lowercased, punctuation removed, tokenized).
2. **Tokenization**: the text is split into tokens and run through lexical analysis.
3. **Token sequence matching**: similarity is measured with TF-IDF, Jaccard and sequence comparison.

The overall level is *Low* up to 30%, *Moderate* up to 70%, and *High* above that.
`
