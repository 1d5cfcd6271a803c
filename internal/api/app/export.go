package app

import (
	"encoding/base64"

	"wikitrans/internal/usecase/editor"
	"wikitrans/internal/usecase/exporter"
)

type ExportAPI struct {
	svc *exporter.Service
	vm  *editor.ViewModel
}

func NewExportAPI(s *exporter.Service, vm *editor.ViewModel) *ExportAPI {
	return &ExportAPI{svc: s, vm: vm}
}

type ExportResponse struct {
	Filename   string `json:"filename"`
	ContentB64 string `json:"content_b64"`
}

// ExportBase64 renders the open project's pairs, including uncommitted
// edits.
func (a *ExportAPI) ExportBase64(format string) (ExportResponse, error) {
	res, err := a.svc.Export(a.vm.Buffer(), format)
	if err != nil {
		return ExportResponse{}, err
	}
	return ExportResponse{Filename: res.Filename, ContentB64: base64.StdEncoding.EncodeToString(res.Content)}, nil
}
