package normalize

// defaultStopWords is the built-in stop-word set for lexical comparisons.
// Deployments override it through the scan-rules file.
var defaultStopWords = []string{
	"a", "an", "and", "are", "as", "at", "be", "been", "but", "by",
	"for", "from", "had", "has", "have", "he", "her", "his", "i", "in",
	"is", "it", "its", "of", "on", "or", "she", "that", "the", "their",
	"them", "they", "this", "to", "was", "we", "were", "which", "will",
	"with", "you",
}

// defaultAcademicPhrases lists boilerplate scholarly phrasing that should
// never be flagged on its own.
var defaultAcademicPhrases = []string{
	"in conclusion",
	"on the other hand",
	"as a result",
	"in other words",
	"for example",
	"for instance",
	"in addition",
	"in summary",
	"it is important to note",
	"on the contrary",
	"as mentioned above",
	"in this paper",
	"the results show",
	"previous studies have shown",
	"further research is needed",
	"taken together these results suggest",
}
