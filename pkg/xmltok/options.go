package xmltok

// Options holds optional tokenizer safeguards. The zero value applies no
// limits, matching spec §7's "no recovery... no panics" default: a caller
// who wants NodesLimitReached or a depth ceiling must opt in.
type Options struct {
	nodesLimit    int
	nodesLimitSet bool
	maxDepth      uint32
	maxDepthSet   bool
}

// JoinOptions combines multiple option sets in declaration order. Later
// options override earlier ones when set, mirroring the teacher's
// set/value-pair merge idiom.
func JoinOptions(srcs ...Options) Options {
	var merged Options
	for _, src := range srcs {
		if src.nodesLimitSet {
			merged.nodesLimit = src.nodesLimit
			merged.nodesLimitSet = true
		}
		if src.maxDepthSet {
			merged.maxDepth = src.maxDepth
			merged.maxDepthSet = true
		}
	}
	return merged
}

// WithNodesLimit caps the number of tokens a Tokenizer will emit before
// failing with NodesLimitReached. A value <= 0 disables the limit.
func WithNodesLimit(value int) Options {
	return Options{nodesLimit: value, nodesLimitSet: true}
}

// WithMaxDepth caps element nesting depth before failing with
// NodesLimitReached. A value of 0 disables the limit. This does not
// validate tag matching (out of scope, spec §1) — it only bounds the depth
// counter: the '>' of a start tag that would raise the depth above value
// fails, after that element's ElementStart and Attribute tokens have been
// emitted. Empty elements ("/>") never raise the depth and are not checked.
func WithMaxDepth(value uint32) Options {
	return Options{maxDepth: value, maxDepthSet: true}
}
