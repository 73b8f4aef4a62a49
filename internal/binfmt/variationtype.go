package binfmt

// variationTypes is the fixed vocabulary of ClinVar structural variant
// classes seen in the variation_type column of the ClinVar SV summary
// file. Index 0 is reserved for "unknown" so a zero-valued int32 field
// decodes to something rather than panicking on an out-of-range index.
var variationTypes = []string{
	"unknown",
	"Deletion",
	"Duplication",
	"Insertion",
	"Inversion",
	"Complex",
	"copy number loss",
	"copy number gain",
}

func encodeVariationType(s string) int32 {
	for i, v := range variationTypes {
		if v == s {
			return int32(i)
		}
	}
	return 0
}

func decodeVariationType(i int32) string {
	if i < 0 || int(i) >= len(variationTypes) {
		return variationTypes[0]
	}
	return variationTypes[i]
}
