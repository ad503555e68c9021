package recordsource

import (
	"encoding/csv"
	"os"

	crerr "github.com/cockroachdb/errors"
)

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, crerr.Wrapf(err, "open csv %s", path)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, crerr.Wrapf(err, "read csv %s", path)
	}
	return rows, nil
}
