package section

// File names inside a database directory.
const (
	InfoFile     = "info"
	FieldsFile   = "fields"
	CookiesFile  = "cookies"
	IndexFile    = "cookies.index"
	CodebookFile = "trails.codebook"
	TrailsFile   = "trails.data"

	lexiconPrefix = "lexicon."
)

// LexiconFile returns the name of the lexicon file of a field.
func LexiconFile(field string) string {
	return lexiconPrefix + field
}
