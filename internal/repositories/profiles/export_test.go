package profiles

// Script hashes, for matching EVALSHA calls in redismock expectations
var (
	CreateScriptHash = createScript.Hash()
	MergeScriptHash  = mergeScript.Hash()
)
