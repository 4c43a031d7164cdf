package transcript

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"call-copilot/internal/models"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/xuri/excelize/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	gmtext "github.com/yuin/goldmark/text"
)

// Transcript is one call transcript read from disk. Title is the file
// stem; CallID is the stem sanitized to [A-Za-z0-9_-].
type Transcript struct {
	CallID string
	Title  string
	Text   string
}

var slugRe = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// Slugify derives a call ID from a file stem.
func Slugify(stem string) string {
	return slugRe.ReplaceAllString(stem, "_")
}

// Read loads a transcript file and derives its call ID and title.
// Returns models.ErrNotFound when the path does not exist.
func Read(path string) (*Transcript, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("transcript file %s: %w", path, models.ErrNotFound)
		}
		return nil, err
	}

	var text string
	var err error
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".txt":
		text, err = readText(path)
	case ".md":
		text, err = readMarkdown(path)
	case ".pdf":
		text, err = readPDF(path)
	case ".docx":
		text, err = readDOCX(path)
	case ".xlsx":
		text, err = readXLSX(path)
	default:
		return nil, fmt.Errorf("unsupported transcript format: %s", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return &Transcript{
		CallID: Slugify(stem),
		Title:  stem,
		Text:   strings.TrimSpace(text),
	}, nil
}

// SupportedFile reports whether the path has a readable transcript
// extension.
func SupportedFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", ".pdf", ".docx", ".xlsx":
		return true
	}
	return false
}

// ListFolder returns the sorted supported transcript files directly
// inside dir. Returns models.ErrNotFound when dir is not a directory.
func ListFolder(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("folder %s: %w", dir, models.ErrNotFound)
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("folder %s: not a directory", dir)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !SupportedFile(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// readMarkdown strips markdown structure down to the plain dialogue
// text by walking the goldmark AST.
func readMarkdown(path string) (string, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	doc := md.Parser().Parse(gmtext.NewReader(src))

	var sb strings.Builder
	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock {
				sb.WriteString("\n")
			}
			return ast.WalkContinue, nil
		}
		if t, ok := n.(*ast.Text); ok {
			sb.Write(t.Segment.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				sb.WriteString("\n")
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}

func readPDF(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return "", err
	}
	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		pageText, err := reader.Page(i).GetPlainText(nil)
		if err != nil {
			return "", err
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func readDOCX(path string) (string, error) {
	r, err := docx.ReadDocxFile(path)
	if err != nil {
		return "", err
	}
	defer r.Close()

	var sb strings.Builder
	for _, p := range strings.Split(r.Editable().GetContent(), "\n") {
		if strings.TrimSpace(p) == "" {
			continue
		}
		sb.WriteString(p)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// readXLSX flattens spreadsheet call-log exports: one line per row,
// cells joined with tabs, one block per sheet.
func readXLSX(path string) (string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var sb strings.Builder
	for _, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			continue
		}
		for _, row := range rows {
			line := strings.TrimSpace(strings.Join(row, "\t"))
			if line == "" {
				continue
			}
			sb.WriteString(line)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
