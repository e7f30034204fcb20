package application_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/rfpdesk/pkg/application"
	"github.com/felixgeelhaar/rfpdesk/pkg/sdk"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want application.Format
		ok   bool
	}{
		{"xlsx", application.FormatSpreadsheet, true},
		{".DOCX", application.FormatDocument, true},
		{"spreadsheet", application.FormatSpreadsheet, true},
		{"pdf", application.FormatPDF, true},
		{"csv", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, err := application.ParseFormat(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
		if !tt.ok && !errors.Is(err, application.ErrUnknownFormat) {
			t.Errorf("ParseFormat(%q) err = %v", tt.in, err)
		}
	}
}

func TestExportFilename(t *testing.T) {
	tests := []struct {
		name   string
		format application.Format
		want   string
	}{
		{"Acme RFP", application.FormatPDF, "Acme RFP.pdf"},
		{"Acme RFP.pdf", application.FormatPDF, "Acme RFP.pdf"},
		{"../../etc/passwd", application.FormatSpreadsheet, "passwd.xlsx"},
		{`Q3: "Final"?`, application.FormatDocument, "Q3_ _Final__.docx"},
		{"...", application.FormatPDF, "export.pdf"},
	}
	for _, tt := range tests {
		if got := application.ExportFilename(tt.name, tt.format); got != tt.want {
			t.Errorf("ExportFilename(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestExportService_UsesServerFilename(t *testing.T) {
	dir := t.TempDir()
	backend := &MockBackend{Export: &sdk.ExportFile{Filename: "Acme.xlsx", Data: []byte("PK")}}
	svc := application.NewExportService(backend, backend, nil, dir, nil)

	res, err := svc.Export(context.Background(), "p1", application.FormatSpreadsheet)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if res.Path != filepath.Join(dir, "Acme.xlsx") || res.Bytes != 2 {
		t.Errorf("result = %+v", res)
	}
	data, err := os.ReadFile(res.Path)
	if err != nil || string(data) != "PK" {
		t.Errorf("file = %q, %v", data, err)
	}
}

func TestExportService_FallsBackToProjectName(t *testing.T) {
	dir := t.TempDir()
	backend := &MockBackend{Project: newProject(1), Export: &sdk.ExportFile{Data: []byte("%PDF")}}
	svc := application.NewExportService(backend, backend, nil, dir, nil)

	res, err := svc.Export(context.Background(), "p1", application.FormatPDF)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(res.Path) != "Acme RFP.pdf" {
		t.Errorf("path = %q", res.Path)
	}
}

func TestExportService_FailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	backend := &MockBackend{ExportErr: errors.New("500 internal")}
	svc := application.NewExportService(backend, backend, nil, dir, nil)

	if _, err := svc.Export(context.Background(), "p1", application.FormatPDF); err == nil {
		t.Fatal("expected error")
	}
	if _, err := svc.Export(context.Background(), "p1", application.Format("csv")); !errors.Is(err, application.ErrUnknownFormat) {
		t.Errorf("err = %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("dir has %d entries", len(entries))
	}
}
