package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ladepause/ladepause/internal/model"
	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Ladepunkte"

// RenderJSON writes matches as an indented JSON array. The file is
// replaced atomically so an interrupted run never leaves half a file.
func RenderJSON(matches []model.Match, path string) error {
	if matches == nil {
		matches = []model.Match{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(matches); err != nil {
		return fmt.Errorf("encode matches: %w", err)
	}

	return writeAtomic(path, buf.Bytes())
}

// CountExisting returns the number of matches in a previous output file.
// Missing or unreadable files count as zero.
func CountExisting(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	var previous []json.RawMessage
	if err := json.Unmarshal(data, &previous); err != nil {
		return 0
	}
	return len(previous)
}

// MonthYear formats t as e.g. "Oktober 2026"
func MonthYear(t time.Time, text Text) string {
	return fmt.Sprintf("%s %d", text.Months[t.Month()-1], t.Year())
}

// RenderMeta writes the data-age banner script read by the map page
func RenderMeta(path string, t time.Time, text Text) error {
	content := fmt.Sprintf("const standDaten = %q;", MonthYear(t, text))
	return writeAtomic(path, []byte(content))
}

// RenderXLSX writes one spreadsheet row per match
func RenderXLSX(matches []model.Match, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(xlsxSheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(xlsxSheet)
	if err != nil {
		return fmt.Errorf("create stream writer: %w", err)
	}

	headers := []interface{}{"Title", "Charger", "Lat", "Lon", "Food", "Note"}
	if err := sw.SetRow("A1", headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, m := range matches {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		food := ""
		if m.FoodID != nil {
			food = *m.FoodID
		}
		row := []interface{}{m.Title, m.ChargerID, m.Lat, m.Lon, food, m.Note}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}

	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	// CreateTemp uses 0600; the map host must be able to read the files
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
