package catalog

// TriggerAliases expands well-known framework families so catalog authors do
// not have to enumerate every import spelling per rule. Alias names end in
// "_import"; the loader rejects trigger entries that look like an alias but
// name none of these.
var TriggerAliases = map[string][]string{
	"interactive_app_import":    {"streamlit", "gradio", "dash", "panel"},
	"async_framework_import":    {"fastapi", "aiohttp", "starlette", "sanic", "quart"},
	"retrieval_pipeline_import": {"langchain", "llama_index", "haystack", "chromadb", "faiss", "pinecone"},
}

// ExpandTrigger resolves a trigger signature into import-path prefixes:
// aliases expand to their framework family, anything else is taken as a
// literal prefix.
func ExpandTrigger(sig string) []string {
	if expanded, ok := TriggerAliases[sig]; ok {
		return expanded
	}
	return []string{sig}
}
