package analyzer

// stopWords is the closed list of common English function words removed
// during tokenization. Removing them lets "the fence" match "fence
// regulations". The set is part of the index contract: persisted snapshots
// were built with it, so additions require a rebuild.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {},
	"on": {}, "at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {},
	"from": {}, "as": {}, "is": {}, "was": {}, "are": {}, "were": {},
	"been": {}, "be": {}, "have": {}, "has": {}, "had": {}, "do": {},
	"does": {}, "did": {}, "will": {}, "would": {}, "could": {},
	"should": {}, "may": {}, "might": {}, "must": {}, "shall": {},
	"can": {}, "need": {}, "this": {}, "that": {}, "these": {},
	"those": {}, "it": {}, "its": {}, "they": {}, "them": {}, "their": {},
	"he": {}, "she": {}, "him": {}, "her": {}, "his": {}, "we": {},
	"us": {}, "our": {}, "you": {}, "your": {}, "who": {}, "which": {},
	"what": {}, "where": {}, "when": {}, "why": {}, "how": {}, "all": {},
	"each": {}, "any": {}, "both": {}, "more": {}, "most": {},
	"other": {}, "some": {}, "such": {}, "no": {}, "nor": {}, "not": {},
	"only": {}, "own": {}, "same": {}, "so": {}, "than": {}, "too": {},
	"very": {}, "just": {}, "also": {}, "now": {}, "here": {},
	"there": {}, "then": {}, "if": {}, "else": {}, "because": {},
	"about": {}, "into": {}, "through": {}, "during": {}, "before": {},
	"after": {}, "above": {}, "below": {}, "between": {}, "under": {},
	"again": {}, "further": {}, "once": {}, "upon": {},
}
