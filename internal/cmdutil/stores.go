package cmdutil

import (
	"os"

	"github.com/varfish-org/varfish-worker-go/internal/binfmt"
	"github.com/varfish-org/varfish-worker-go/internal/chrom"
	"github.com/varfish-org/varfish-worker-go/internal/concurrency"
	"github.com/varfish-org/varfish-worker-go/internal/kvstore"
	"github.com/varfish-org/varfish-worker-go/internal/model"
	"github.com/varfish-org/varfish-worker-go/internal/query"
	"github.com/varfish-org/varfish-worker-go/internal/seqingest"
	"github.com/varfish-org/varfish-worker-go/internal/svindex"
)

// OpenAnnotationClients opens every configured frequency/ClinVar
// small-variant store concurrently, bounded by concurrency.Throttle, since
// each Open is independent file I/O. An unconfigured (empty path) slot is
// left nil, which seqingest.Annotate already treats as "annotate with the
// zero value."
func OpenAnnotationClients(cfg *StoreConfig) (seqingest.AnnotationClients, error) {
	var clients seqingest.AnnotationClients
	t := &concurrency.Throttle{Max: 4}

	openFreq := func(path string, dst **kvstore.FrequencyStore) {
		if path == "" {
			return
		}
		t.Acquire()
		go func() {
			defer t.Release()
			s, err := kvstore.OpenFrequencyStore(path)
			if err != nil {
				t.Report(err)
				return
			}
			*dst = s
		}()
	}
	openFreq(cfg.GnomadExomes, &clients.GnomadExomes)
	openFreq(cfg.GnomadGenomes, &clients.GnomadGenomes)
	openFreq(cfg.GnomadMt, &clients.GnomadMt)
	openFreq(cfg.HelixMt, &clients.HelixMt)
	openFreq(cfg.InHouseSeq, &clients.InHouse)

	if cfg.ClinVar != "" {
		t.Acquire()
		go func() {
			defer t.Release()
			s, err := kvstore.OpenClinVarStore(cfg.ClinVar)
			if err != nil {
				t.Report(err)
				return
			}
			clients.ClinVar = s
		}()
	}

	if err := t.Wait(); err != nil {
		return seqingest.AnnotationClients{}, err
	}
	return clients, nil
}

// OpenSvDatabases loads every configured background/ClinVar-SV binary
// database, bucketing each by chromosome and building the in-memory overlap
// index. An unconfigured path leaves that slot nil, which
// svindex.BgDb/ClinVarSvDb already treat as empty.
func OpenSvDatabases(cfg *StoreConfig) (*query.Databases, error) {
	dbs := &query.Databases{}

	load := func(path string) (*svindex.BgDb, error) {
		if path == "" {
			return nil, nil
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		records, err := binfmt.ReadBackgroundSvRecords(f)
		if err != nil {
			return nil, err
		}
		return svindex.NewBgDb(bucketBackgroundByChrom(records)), nil
	}

	var err error
	if dbs.DbVar, err = load(cfg.DbVar); err != nil {
		return nil, err
	}
	if dbs.Dgv, err = load(cfg.Dgv); err != nil {
		return nil, err
	}
	if dbs.DgvGs, err = load(cfg.DgvGs); err != nil {
		return nil, err
	}
	if dbs.G1000, err = load(cfg.G1000); err != nil {
		return nil, err
	}
	if dbs.GnomadSvV2, err = load(cfg.GnomadSvV2); err != nil {
		return nil, err
	}
	if dbs.GnomadSvV4, err = load(cfg.GnomadSvV4); err != nil {
		return nil, err
	}
	if dbs.GnomadCnvV4, err = load(cfg.GnomadCnvV4); err != nil {
		return nil, err
	}
	if dbs.InHouse, err = load(cfg.InHouseSv); err != nil {
		return nil, err
	}

	if cfg.ClinVarSv != "" {
		f, err := os.Open(cfg.ClinVarSv)
		if err != nil {
			return nil, err
		}
		records, err := binfmt.ReadClinVarSvRecords(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		dbs.ClinVarSv = svindex.NewClinVarSvDb(bucketClinVarSvByChrom(records))
	}

	return dbs, nil
}

func bucketBackgroundByChrom(records []model.BackgroundSvRecord) [][]model.BackgroundSvRecord {
	out := make([][]model.BackgroundSvRecord, chrom.Count)
	for _, r := range records {
		out[r.ChromNo] = append(out[r.ChromNo], r)
	}
	return out
}

func bucketClinVarSvByChrom(records []model.ClinVarSvRecord) [][]model.ClinVarSvRecord {
	out := make([][]model.ClinVarSvRecord, chrom.Count)
	for _, r := range records {
		out[r.ChromNo] = append(out[r.ChromNo], r)
	}
	return out
}
