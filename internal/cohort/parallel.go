package cohort

import "golang.org/x/sync/errgroup"

// ParseCaseFile parses one case's ingested SV file into its BgCandidate
// rows. Supplied by the caller (cmd layer) so this package stays decoupled
// from the VCF wire format.
type ParseCaseFile func(path string) ([]BgCandidate, error)

// ParseCasesParallel parses every case file concurrently, bounded by
// maxParallel: each parse is independent, while the merge that follows is
// a sequential reduce per bucket. Results are returned in input order
// regardless of completion order, so the subsequent bucket-add pass stays
// deterministic. Parses are not cancelled on failure: every started parse
// runs to completion, and then the first parse error is returned.
func ParseCasesParallel(paths []string, maxParallel int, parse ParseCaseFile) ([][]BgCandidate, error) {
	results := make([][]BgCandidate, len(paths))

	var g errgroup.Group
	g.SetLimit(maxParallel)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			rows, err := parse(path)
			if err != nil {
				return err
			}
			results[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
