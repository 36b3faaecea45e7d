package domain

// DefaultImageKey is the mandatory fallback entry of an AuthorImageTable.
const DefaultImageKey = "default"

// defaultPortraitURL is used when no table entry matches an author.
const defaultPortraitURL = "https://upload.wikimedia.org/wikipedia/commons/thumb/a/ac/No_image_available.svg/300px-No_image_available.svg.png"

// AuthorImageTable maps author names to portrait URLs.
// The zero value is not usable; construct with NewAuthorImageTable.
// A table is read-only once built and safe for concurrent use.
type AuthorImageTable struct {
	images   map[string]string
	fallback string
}

// NewAuthorImageTable builds an immutable table from the given entries.
// The entries must contain a non-empty DefaultImageKey.
func NewAuthorImageTable(entries map[string]string) (*AuthorImageTable, error) {
	fallback := entries[DefaultImageKey]
	if fallback == "" {
		return nil, NewValidationError(DefaultImageKey, "author image table requires a default entry")
	}

	images := make(map[string]string, len(entries))
	for author, url := range entries {
		if author == DefaultImageKey || url == "" {
			continue
		}

		images[author] = url
	}

	return &AuthorImageTable{images: images, fallback: fallback}, nil
}

// Resolve returns the portrait URL for author, or the default entry
// when the author has no exact match.
func (t *AuthorImageTable) Resolve(author string) string {
	if url, ok := t.images[author]; ok {
		return url
	}

	return t.fallback
}

// Default returns the fallback portrait URL.
func (t *AuthorImageTable) Default() string {
	return t.fallback
}

// Len returns the number of authors with a dedicated portrait.
func (t *AuthorImageTable) Len() int {
	return len(t.images)
}

// DefaultAuthorImages returns the bundled portrait table.
func DefaultAuthorImages() *AuthorImageTable {
	table, err := NewAuthorImageTable(map[string]string{
		"Rumi":                    "https://sp.yimg.com/ib/th?id=OIP.CIvEZQdCsOhsCK67HtsJaAAAAA&pid=Api&w=148&h=148&c=7&dpr=2&rs=1",
		"Abu Bakr (R.A)":          "https://up.yimg.com/ib/th?id=OIP.zLhMajwizzbnkliIDLKf7QHaEJ&pid=Api&rs=1&c=1&qlt=95&w=192&h=107",
		"Ali ibn Abi Talib (R.A)": "https://tse1.mm.bing.net/th?id=OIP.paSIOcmw38-Zd5bf0bD7QgHaI-&pid=Api&P=0&h=180",
		"Abdul Kalam":             "https://upload.wikimedia.org/wikipedia/commons/thumb/6/6e/A._P._J._Abdul_Kalam.jpg/220px-A._P._J._Abdul_Kalam.jpg",
		"Bill Gates":              "https://upload.wikimedia.org/wikipedia/commons/thumb/a/a0/Bill_Gates_2018.jpg/220px-Bill_Gates_2018.jpg",
		"Albert Einstein":         "https://upload.wikimedia.org/wikipedia/commons/thumb/d/d3/Albert_Einstein_Head.jpg/220px-Albert_Einstein_Head.jpg",
		"Abraham Lincoln":         "https://upload.wikimedia.org/wikipedia/commons/thumb/a/ab/Abraham_Lincoln_O-77_matte_collodion_print.jpg/220px-Abraham_Lincoln_O-77_matte_collodion_print.jpg",
		"Oprah Winfrey":           "https://upload.wikimedia.org/wikipedia/commons/thumb/b/bf/Oprah_in_2014.jpg/220px-Oprah_in_2014.jpg",
		"Muhammad Ali":            "https://upload.wikimedia.org/wikipedia/commons/thumb/8/89/Muhammad_Ali_NYWTS.jpg/220px-Muhammad_Ali_NYWTS.jpg",
		"William Shakespeare":     "https://upload.wikimedia.org/wikipedia/commons/thumb/a/a2/Shakespeare.jpg/220px-Shakespeare.jpg",
		"Mother Teresa":           "https://upload.wikimedia.org/wikipedia/commons/thumb/d/d6/Mother_Teresa_1.jpg/220px-Mother_Teresa_1.jpg",
		"Nelson Mandela":          "https://upload.wikimedia.org/wikipedia/commons/thumb/0/02/Nelson_Mandela_1994.jpg/220px-Nelson_Mandela_1994.jpg",
		"Walt Disney":             "https://upload.wikimedia.org/wikipedia/commons/thumb/d/df/Walt_Disney_1946.JPG/220px-Walt_Disney_1946.JPG",
		"Aristotle":               "https://upload.wikimedia.org/wikipedia/commons/thumb/a/ae/Aristotle_Altemps_Inv8575.jpg/220px-Aristotle_Altemps_Inv8575.jpg",
		DefaultImageKey:           defaultPortraitURL,
	})
	if err != nil {
		// The bundled table always carries a default entry.
		panic(err)
	}

	return table
}
