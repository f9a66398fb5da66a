package report

import (
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"

	"github.com/cognicore/textlab/pkg/textlab/knn"
	"github.com/cognicore/textlab/pkg/textlab/stoplist"
	"github.com/cognicore/textlab/pkg/textlab/store"
	"github.com/cognicore/textlab/pkg/textlab/vocab"
)

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

// WordCounts prints ranked word counts.
func WordCounts(w io.Writer, counts []vocab.WordCount) {
	table := newTable(w, "Rank", "Word", "Count")
	table.AppendBulk(lo.Map(counts, func(wc vocab.WordCount, i int) []string {
		return []string{strconv.Itoa(i + 1), strconv.Quote(wc.Word), strconv.Itoa(wc.Count)}
	}))
	table.Render()
}

// Votes prints the label tally of a kNN query.
func Votes(w io.Writer, votes []knn.Vote) {
	table := newTable(w, "Label", "Votes")
	table.AppendBulk(lo.Map(votes, func(v knn.Vote, _ int) []string {
		return []string{v.Label, strconv.Itoa(v.Count)}
	}))
	table.Render()
}

// Neighbors prints scored neighbors.
func Neighbors(w io.Writer, neighbors []knn.Neighbor) {
	table := newTable(w, "Document", "Label", "Score")
	table.AppendBulk(lo.Map(neighbors, func(n knn.Neighbor, _ int) []string {
		return []string{n.ID, n.Label, strconv.FormatFloat(n.Score, 'g', 6, 64)}
	}))
	table.Render()
}

// Stopwords prints stopword candidates.
func Stopwords(w io.Writer, candidates []stoplist.Candidate) {
	table := newTable(w, "Word", "Score", "IDF", "Entropy")
	table.AppendBulk(lo.Map(candidates, func(c stoplist.Candidate, _ int) []string {
		return []string{
			c.Word,
			strconv.FormatFloat(c.Score, 'f', 3, 64),
			strconv.FormatFloat(c.Reason.IDF, 'f', 3, 64),
			strconv.FormatFloat(c.Reason.CatEntropy, 'f', 3, 64),
		}
	}))
	table.Render()
}

// Coefficients prints the first limit coefficients, all when limit <= 0.
func Coefficients(w io.Writer, coef []float64, limit int) {
	if limit > 0 && len(coef) > limit {
		coef = coef[:limit]
	}
	table := newTable(w, "Index", "Coefficient")
	table.AppendBulk(lo.Map(coef, func(c float64, i int) []string {
		return []string{strconv.Itoa(i), strconv.FormatFloat(c, 'g', 8, 64)}
	}))
	table.Render()
}

// Runs prints stored runs.
func Runs(w io.Writer, runs []store.Run) {
	table := newTable(w, "ID", "Kind", "Created", "Documents")
	table.AppendBulk(lo.Map(runs, func(r store.Run, _ int) []string {
		return []string{r.ID, r.Kind, r.CreatedAt.Format(time.RFC3339), strconv.Itoa(r.Documents)}
	}))
	table.Render()
}
