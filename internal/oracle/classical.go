package oracle

// WorstCaseQueries is the number of inputs a deterministic classical
// algorithm must inspect before it can certify the promise: half of them
// plus one, 2^(n-1) + 1.
func WorstCaseQueries(inputs int) uint64 {
	return 1<<uint(inputs-1) + 1
}

// ClassifyClassically runs the deterministic classical procedure against
// the oracle: query inputs in order until two answers differ, or until
// half plus one agree. It returns the verdict and how many queries it
// spent, the baseline the single quantum evaluation is measured against.
func ClassifyClassically(o *Oracle) (Kind, uint64) {
	first := o.Evaluate(0)
	limit := WorstCaseQueries(o.Inputs)
	for x := uint64(1); x < limit; x++ {
		if o.Evaluate(x) != first {
			return Balanced, x + 1
		}
	}
	return Constant, limit
}
