package ports

type ExportItem struct {
	SentenceID  int64
	Original    string
	Translation string
}

type Exporter interface {
	Format() string
	Export(items []ExportItem) ([]byte, error)
}
