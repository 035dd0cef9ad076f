package output

// SkippedRow - строка файла, которую не удалось импортировать
type SkippedRow struct {
	Line  int    `json:"line"`
	Error string `json:"error"`
}

type ImportResult struct {
	Created int          `json:"created"`
	Updated int          `json:"updated"`
	Skipped []SkippedRow `json:"skipped"`
}
