package query

// UcscBin computes the UCSC binning-scheme value for the half-open range
// [begin, end), stored in the TSV output column. This is the standard
// tiered bin index (also used by BAM/tabix): a record's bin is the
// smallest of six nested size tiers that fully contains it.
func UcscBin(begin, end int32) int32 {
	end--
	switch {
	case begin>>14 == end>>14:
		return ((1 << 15) - 1)/7 + (begin >> 14)
	case begin>>17 == end>>17:
		return ((1 << 12) - 1)/7 + (begin >> 17)
	case begin>>20 == end>>20:
		return ((1 << 9) - 1)/7 + (begin >> 20)
	case begin>>23 == end>>23:
		return ((1 << 6) - 1)/7 + (begin >> 23)
	case begin>>26 == end>>26:
		return ((1 << 3) - 1)/7 + (begin >> 26)
	default:
		return 0
	}
}
