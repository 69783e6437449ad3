package media

// Merge overlays newer on older field by field. Non-empty values in newer
// win; empty ones fall back to older.
func Merge(older, newer Record) Record {
	out := newer

	if out.MediaType == "" {
		out.MediaType = older.MediaType
	}
	out.ExternalID = firstString(newer.ExternalID, older.ExternalID)
	out.Title = firstString(newer.Title, older.Title)
	out.ImageURL = firstString(newer.ImageURL, older.ImageURL)
	out.Description = firstString(newer.Description, older.Description)
	out.ReleaseDate = firstString(newer.ReleaseDate, older.ReleaseDate)
	if out.ReleaseYear == nil {
		out.ReleaseYear = older.ReleaseYear
	}
	if out.Rating == nil {
		out.Rating = older.Rating
	}
	if len(out.Genres) == 0 {
		out.Genres = older.Genres
	}
	if out.Source == "" {
		out.Source = older.Source
	}
	out.Detailed = newer.Detailed || older.Detailed

	out.Screen = mergeScreen(older.Screen, newer.Screen)
	out.Book = mergeBook(older.Book, newer.Book)
	out.Game = mergeGame(older.Game, newer.Game)

	return out
}

func mergeScreen(older, newer *ScreenExtras) *ScreenExtras {
	if newer == nil {
		return older
	}
	if older == nil {
		return newer
	}
	out := *newer
	if len(out.Cast) == 0 {
		out.Cast = older.Cast
	}
	out.Directors = firstSlice(newer.Directors, older.Directors)
	out.Producers = firstSlice(newer.Producers, older.Producers)
	out.ImdbID = firstString(newer.ImdbID, older.ImdbID)
	if out.Runtime == 0 {
		out.Runtime = older.Runtime
	}
	if out.Seasons == 0 {
		out.Seasons = older.Seasons
	}
	return &out
}

func mergeBook(older, newer *BookExtras) *BookExtras {
	if newer == nil {
		return older
	}
	if older == nil {
		return newer
	}
	out := *newer
	out.Authors = firstSlice(newer.Authors, older.Authors)
	out.Publisher = firstString(newer.Publisher, older.Publisher)
	if out.PageCount == 0 {
		out.PageCount = older.PageCount
	}
	out.InfoLink = firstString(newer.InfoLink, older.InfoLink)
	out.ISBN = firstString(newer.ISBN, older.ISBN)
	return &out
}

func mergeGame(older, newer *GameExtras) *GameExtras {
	if newer == nil {
		return older
	}
	if older == nil {
		return newer
	}
	out := *newer
	out.Platforms = firstSlice(newer.Platforms, older.Platforms)
	out.Developers = firstSlice(newer.Developers, older.Developers)
	out.Publishers = firstSlice(newer.Publishers, older.Publishers)
	out.Screenshots = firstSlice(newer.Screenshots, older.Screenshots)
	out.Videos = firstSlice(newer.Videos, older.Videos)
	out.Link = firstString(newer.Link, older.Link)
	return &out
}

func firstString(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func firstSlice(a, b []string) []string {
	if len(a) > 0 {
		return a
	}
	return b
}
