package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/sakshi-kadian/aurelius/pkg/logger"

	lpdf "github.com/ledongthuc/pdf"
)

var (
	errNoPdftotext = errors.New("pdftotext not found in PATH")
	reNewlines     = regexp.MustCompile(`\n{3,}`)
)

// parsePDF prefers poppler's pdftotext, which keeps the reading order of
// multi-column layouts, and falls back to the pure Go reader.
func parsePDF(ctx context.Context, input []byte) (string, error) {
	text, err := parseWithPdftotext(ctx, input)
	if err == nil {
		return text, nil
	}
	if !errors.Is(err, errNoPdftotext) {
		logger.Warn("[Loader] pdftotext failed, using built-in parser", "err", err)
	}
	return parseWithReader(input)
}

func parseWithPdftotext(ctx context.Context, input []byte) (string, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return "", errNoPdftotext
	}

	tmpDir, err := os.MkdirTemp("", "pdfextract-")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	pdfPath := filepath.Join(tmpDir, "input.pdf")
	if err := os.WriteFile(pdfPath, input, 0o600); err != nil {
		return "", fmt.Errorf("failed to write temp PDF: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(
		ctx,
		"pdftotext",
		"-enc", "UTF-8",
		"-eol", "unix",
		"-nopgbrk",
		"-q",
		pdfPath,
		"-",
	)
	cmd.Env = append(os.Environ(), "LANG=C.UTF-8", "LC_ALL=C.UTF-8")

	out, err := cmd.Output()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "", fmt.Errorf("pdftotext timed out")
	}
	if err != nil {
		return "", fmt.Errorf("pdftotext failed: %w", err)
	}

	return tidy(string(out)), nil
}

func parseWithReader(input []byte) (string, error) {
	reader, err := lpdf.NewReader(bytes.NewReader(input), int64(len(input)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to read pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("failed to read pdf text: %w", err)
	}
	return tidy(buf.String()), nil
}

func tidy(text string) string {
	text = strings.TrimSpace(text)
	return reNewlines.ReplaceAllString(text, "\n\n")
}
