package curation

import (
	"os"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/pkg/errors"
)

// LoadEmbeddings reads sample embeddings from a CSV table: the first
// column carries the sample id, every remaining column one vector
// component. A header row is required but the column names are free-form.
func LoadEmbeddings(path string) ([]string, [][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to open embeddings %s", path)
	}
	defer f.Close()

	df := dataframe.ReadCSV(f)
	if df.Err != nil {
		return nil, nil, errors.Wrapf(df.Err, "failed to parse embeddings %s", path)
	}
	if df.Ncol() < 2 {
		return nil, nil, errors.Errorf("embeddings %s need an id column and at least one component", path)
	}

	cols := df.Names()
	ids := df.Col(cols[0]).Records()
	vectors := make([][]float64, df.Nrow())
	for i := range vectors {
		vectors[i] = make([]float64, df.Ncol()-1)
	}
	for j, name := range cols[1:] {
		for i, record := range df.Col(name).Records() {
			v, err := strconv.ParseFloat(record, 64)
			if err != nil {
				return nil, nil, errors.Errorf("embeddings %s: row %d column %s is not numeric", path, i+1, name)
			}
			vectors[i][j] = v
		}
	}
	return ids, vectors, nil
}

// WriteScores saves ranked scores as CSV, keeping the given order.
func WriteScores(path string, scores []Score) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create scores file %s", path)
	}
	defer f.Close()

	df := dataframe.LoadStructs(scores)
	if df.Err != nil {
		return errors.Wrap(df.Err, "failed to build scores table")
	}
	if err := df.WriteCSV(f); err != nil {
		return errors.Wrapf(err, "failed to write scores %s", path)
	}
	return nil
}
