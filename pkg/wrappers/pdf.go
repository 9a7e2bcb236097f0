package wrappers

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Headless browsers accepted as PDF renderers, tried after wkhtmltopdf
var chromiumBinaries = []string{"google-chrome", "chromium", "chromium-browser"}

// RenderPDF converts an HTML report into a PDF using whatever renderer the
// host provides: wkhtmltopdf first, then a headless Chromium flavor. The
// caller treats any error as a soft failure and keeps the HTML artifact.
func RenderPDF(ctx context.Context, htmlPath, pdfPath string) error {
	if bin, err := exec.LookPath("wkhtmltopdf"); err == nil {
		return runRenderer(ctx, bin, []string{"--quiet", htmlPath, pdfPath}, pdfPath)
	}

	for _, name := range chromiumBinaries {
		bin, err := exec.LookPath(name)
		if err != nil {
			continue
		}
		abs, err := filepath.Abs(htmlPath)
		if err != nil {
			return fmt.Errorf("resolving html path: %v", err)
		}
		args := []string{
			"--headless",
			"--disable-gpu",
			"--no-sandbox",
			"--print-to-pdf=" + pdfPath,
			"file://" + abs,
		}
		return runRenderer(ctx, bin, args, pdfPath)
	}

	return fmt.Errorf("no PDF renderer found on PATH (tried wkhtmltopdf, %s)", strings.Join(chromiumBinaries, ", "))
}

// runRenderer executes the renderer and verifies it actually produced output.
// Chromium in particular can exit zero without writing a file.
func runRenderer(ctx context.Context, bin string, args []string, pdfPath string) error {
	cmd := exec.CommandContext(ctx, bin, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s failed: %v. Output:\n%s", filepath.Base(bin), err, string(output))
	}
	if info, err := os.Stat(pdfPath); err != nil || info.Size() == 0 {
		return fmt.Errorf("%s exited cleanly but wrote no PDF. Output:\n%s", filepath.Base(bin), string(output))
	}
	return nil
}
