package recordsource

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/prop-projection/internal/domain/gamelog"
	"github.com/riskibarqy/prop-projection/internal/platform/logging"
	"github.com/xuri/excelize/v2"
)

var (
	ErrUnsupportedFormat = crerr.New("unsupported record file format")
	ErrMissingColumns    = crerr.New("record file is missing required columns")
	ErrEmptyFile         = crerr.New("record file has no header row")
)

const maxReportedSkips = 20

type column int

const (
	colName column = iota
	colTeam
	colOpponent
	colDate
	colSeasonAvg
	colL5Avg
	colL10Avg
	colTOI
	columnCount
)

var headerAliases = map[string]column{
	"name":      colName,
	"player":    colName,
	"team":      colTeam,
	"opponent":  colOpponent,
	"opp":       colOpponent,
	"date":      colDate,
	"seasonavg": colSeasonAvg,
	"l5avg":     colL5Avg,
	"l10avg":    colL10Avg,
	"toi":       colTOI,
}

var requiredColumns = []column{colName, colDate, colSeasonAvg, colL5Avg, colL10Avg, colTOI}

var columnLabels = [columnCount]string{"Name", "Team", "Opponent", "Date", "Season Avg", "L5 Avg", "L10 Avg", "TOI"}

var dateLayouts = []string{
	gamelog.DateLayout,
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
	"1/2/2006",
	"01-02-06",
	"1/2/06",
	"Jan 2, 2006",
	"2-Jan-2006",
}

type Options struct {
	Path string
	// Sheet selects the worksheet of an .xlsx file. Empty means the first sheet.
	Sheet  string
	Policy gamelog.TOIPolicy
}

// Report describes one load. Skipped rows are rows with no name or no parseable date.
type Report struct {
	Path         string
	Format       string
	Rows         int
	Loaded       int
	Skipped      int
	SkipExamples []string
}

// Load reads a .csv or .xlsx record file into validated records, preserving file order.
func Load(ctx context.Context, opts Options, logger *logging.Logger) ([]gamelog.Record, Report, error) {
	if logger == nil {
		logger = logging.Default()
	}

	report := Report{Path: opts.Path, Format: strings.ToLower(strings.TrimPrefix(filepath.Ext(opts.Path), "."))}

	var (
		rows [][]string
		err  error
	)
	switch report.Format {
	case "csv":
		rows, err = readCSV(opts.Path)
	case "xlsx", "xlsm":
		rows, err = readXLSX(opts.Path, opts.Sheet)
	default:
		return nil, report, crerr.Wrapf(ErrUnsupportedFormat, "path=%s", opts.Path)
	}
	if err != nil {
		return nil, report, err
	}
	if err := ctx.Err(); err != nil {
		return nil, report, err
	}

	records, err := parseRows(rows, opts.Policy, &report)
	if err != nil {
		return nil, report, crerr.Wrapf(err, "parse %s", opts.Path)
	}

	logger.InfoContext(ctx, "record file loaded",
		"path", report.Path,
		"format", report.Format,
		"rows", report.Rows,
		"loaded", report.Loaded,
		"skipped", report.Skipped,
	)
	if report.Skipped > 0 {
		logger.WarnContext(ctx, "record rows skipped",
			"path", report.Path,
			"skipped", report.Skipped,
			"examples", report.SkipExamples,
		)
	}

	return records, report, nil
}

func readXLSX(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, crerr.Wrapf(err, "open workbook %s", path)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, crerr.Wrapf(ErrEmptyFile, "workbook %s has no sheets", path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, crerr.Wrapf(err, "read sheet %q", sheet)
	}
	return rows, nil
}

func parseRows(rows [][]string, policy gamelog.TOIPolicy, report *Report) ([]gamelog.Record, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	index, err := mapHeader(rows[0])
	if err != nil {
		return nil, err
	}

	records := make([]gamelog.Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		report.Rows++

		line := i + 2
		in, reason := rowInput(row, index)
		if reason != "" {
			report.skip(line, reason)
			continue
		}

		rec, err := gamelog.NewRecord(in, policy)
		if err != nil {
			report.skip(line, err.Error())
			continue
		}
		records = append(records, rec)
	}
	report.Loaded = len(records)

	return records, nil
}

func mapHeader(header []string) ([columnCount]int, error) {
	var index [columnCount]int
	for i := range index {
		index[i] = -1
	}

	for i, cell := range header {
		key := normalizeHeader(cell)
		if col, ok := headerAliases[key]; ok && index[col] < 0 {
			index[col] = i
		}
	}

	var missing []string
	for _, col := range requiredColumns {
		if index[col] < 0 {
			missing = append(missing, columnLabels[col])
		}
	}
	if len(missing) > 0 {
		return index, crerr.Wrapf(ErrMissingColumns, "missing=%s", strings.Join(missing, ","))
	}

	return index, nil
}

func rowInput(row []string, index [columnCount]int) (gamelog.RecordInput, string) {
	cell := func(col column) string {
		i := index[col]
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	name := cell(colName)
	if name == "" {
		return gamelog.RecordInput{}, "blank name"
	}
	date, ok := parseDate(cell(colDate))
	if !ok {
		return gamelog.RecordInput{}, "unparseable date " + strconv.Quote(cell(colDate))
	}

	return gamelog.RecordInput{
		Name:      name,
		Team:      cell(colTeam),
		Opponent:  cell(colOpponent),
		Date:      date,
		SeasonAvg: parseNumber(cell(colSeasonAvg)),
		L5Avg:     parseNumber(cell(colL5Avg)),
		L10Avg:    parseNumber(cell(colL10Avg)),
		TOI:       parseTOICell(cell(colTOI)),
	}, ""
}

func parseDate(v string) (time.Time, bool) {
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}

	// Unformatted spreadsheet cells carry the Excel day serial.
	if serial, err := strconv.ParseFloat(v, 64); err == nil && serial > 0 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseNumber(v string) *float64 {
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64)
	if err != nil {
		return nil
	}
	return &f
}

// parseTOICell keeps numeric cells numeric so they pass through unchanged.
func parseTOICell(v string) gamelog.RawTOI {
	if v == "" {
		return gamelog.MissingTOI()
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return gamelog.TOIFromNumber(f)
	}
	return gamelog.TOIFromText(v)
}

func normalizeHeader(v string) string {
	v = strings.ToLower(strings.TrimPrefix(v, "\ufeff"))
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '_', '-', '.':
			return -1
		}
		return r
	}, v)
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func (r *Report) skip(line int, reason string) {
	r.Skipped++
	if len(r.SkipExamples) < maxReportedSkips {
		r.SkipExamples = append(r.SkipExamples, "line "+strconv.Itoa(line)+": "+reason)
	}
}
