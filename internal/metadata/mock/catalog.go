package mock

import (
	"github.com/mediashelf/mediashelf/internal/media"
)

func year(y int) *int { return &y }
func rating(r float64) *float64 { return &r }

var fixtures = []media.Record{
	{
		MediaType:   media.TypeMovie,
		ExternalID:  "603",
		Title:       "The Matrix",
		ImageURL:    "https://image.tmdb.org/t/p/w500/f89U3ADr1oiB1s9GkdPOEpXUk5H.jpg",
		Description: "A computer hacker learns about the true nature of reality and his role in the war against its controllers.",
		ReleaseDate: "1999-03-30",
		ReleaseYear: year(1999),
		Rating:      rating(16.4),
		Genres:      []string{"Action", "Science Fiction"},
		Source:      media.SourceTMDB,
		Screen: &media.ScreenExtras{
			Cast: []media.CastMember{
				{Name: "Keanu Reeves", Character: "Neo"},
				{Name: "Laurence Fishburne", Character: "Morpheus"},
				{Name: "Carrie-Anne Moss", Character: "Trinity"},
			},
			Directors: []string{"Lana Wachowski", "Lilly Wachowski"},
			Producers: []string{"Joel Silver"},
			ImdbID:    "tt0133093",
			Runtime:   136,
		},
	},
	{
		MediaType:   media.TypeMovie,
		ExternalID:  "27205",
		Title:       "Inception",
		ImageURL:    "https://image.tmdb.org/t/p/w500/oYuLEt3zVCKq57qu2F8dT7NIa6f.jpg",
		Description: "A thief who steals corporate secrets through dream-sharing technology is given the task of planting an idea.",
		ReleaseDate: "2010-07-16",
		ReleaseYear: year(2010),
		Rating:      rating(16.8),
		Genres:      []string{"Action", "Science Fiction", "Adventure"},
		Source:      media.SourceTMDB,
		Screen: &media.ScreenExtras{
			Cast:      []media.CastMember{{Name: "Leonardo DiCaprio", Character: "Cobb"}},
			Directors: []string{"Christopher Nolan"},
			Producers: []string{"Emma Thomas", "Christopher Nolan"},
			ImdbID:    "tt1375666",
			Runtime:   148,
		},
	},
	{
		MediaType:   media.TypeSeries,
		ExternalID:  "1396",
		Title:       "Breaking Bad",
		ImageURL:    "https://image.tmdb.org/t/p/w500/ggFHVNu6YYI5L9pCfOacjizRGt.jpg",
		Description: "A high school chemistry teacher diagnosed with cancer turns to manufacturing methamphetamine.",
		ReleaseDate: "2008-01-20",
		ReleaseYear: year(2008),
		Rating:      rating(17.8),
		Genres:      []string{"Drama", "Crime"},
		Source:      media.SourceTMDB,
		Screen: &media.ScreenExtras{
			Cast:      []media.CastMember{{Name: "Bryan Cranston", Character: "Walter White"}},
			Directors: []string{"Vince Gilligan"},
			ImdbID:    "tt0903747",
			Seasons:   5,
		},
	},
	{
		MediaType:   media.TypeSeries,
		ExternalID:  "1399",
		Title:       "Game of Thrones",
		ReleaseDate: "2011-04-17",
		ReleaseYear: year(2011),
		Rating:      rating(16.9),
		Genres:      []string{"Sci-Fi & Fantasy", "Drama"},
		Source:      media.SourceTMDB,
		Screen:      &media.ScreenExtras{Seasons: 8},
	},
	{
		MediaType:   media.TypeBook,
		ExternalID:  "B1XdYlVO6qMC",
		Title:       "Dune",
		ImageURL:    "https://books.google.com/books/content?id=B1XdYlVO6qMC&printsec=frontcover&img=1&zoom=1",
		Description: "Set on the desert planet Arrakis, Dune is the story of the boy Paul Atreides.",
		ReleaseDate: "1990-09-01",
		ReleaseYear: year(1990),
		Rating:      rating(16.0),
		Genres:      []string{"Fiction"},
		Source:      media.SourceGoogleBooks,
		Book: &media.BookExtras{
			Authors:   []string{"Frank Herbert"},
			Publisher: "Ace",
			PageCount: 535,
			ISBN:      "9780441172719",
		},
	},
	{
		MediaType:   media.TypeBook,
		ExternalID:  "hFfhrCWiLSMC",
		Title:       "The Left Hand of Darkness",
		ReleaseDate: "1969",
		ReleaseYear: year(1969),
		Genres:      []string{"Fiction"},
		Source:      media.SourceGoogleBooks,
		Book:        &media.BookExtras{Authors: []string{"Ursula K. Le Guin"}, Publisher: "Ace"},
	},
	{
		MediaType:   media.TypeGame,
		ExternalID:  "1942",
		Title:       "The Witcher 3: Wild Hunt",
		ImageURL:    "https://images.igdb.com/igdb/image/upload/t_cover_big/co1wyy.jpg",
		Description: "Geralt of Rivia searches for his adopted daughter in a war-torn open world.",
		ReleaseDate: "2015-05-19",
		ReleaseYear: year(2015),
		Rating:      rating(18.6),
		Genres:      []string{"Role-playing (RPG)", "Adventure"},
		Source:      media.SourceIGDB,
		Game: &media.GameExtras{
			Platforms:  []string{"PC", "PS4", "XONE", "Switch"},
			Developers: []string{"CD Projekt RED"},
			Publishers: []string{"CD Projekt", "Bandai Namco Entertainment"},
			Link:       "https://www.igdb.com/games/the-witcher-3-wild-hunt",
		},
	},
	{
		MediaType:   media.TypeGame,
		ExternalID:  "119133",
		Title:       "Elden Ring",
		ReleaseDate: "2022-02-25",
		ReleaseYear: year(2022),
		Rating:      rating(18.4),
		Genres:      []string{"Role-playing (RPG)"},
		Source:      media.SourceIGDB,
		Game: &media.GameExtras{
			Platforms:  []string{"PC", "PS5", "Series X"},
			Developers: []string{"FromSoftware"},
		},
	},
}
