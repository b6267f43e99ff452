package sources

// builtinAdapters returns the default roster. Selector maps are maintained
// by hand against each site's markup; the overlay file can replace any of
// them without a rebuild.
func builtinAdapters() []*Adapter {
	return []*Adapter{
		{
			Name:       "reuters",
			ListingURL: "https://www.reuters.com/world/",
			FeedURLs: []string{
				"https://www.reuters.com/rssfeed/world",
			},
			ArticlePatterns: []string{"/world/", "/business/", "/markets/"},
			Enabled:         true,
			List: ListSelectors{
				Container:   "main",
				Item:        "li[class*='story-collection']",
				Title:       "a[data-testid='Heading']",
				Link:        "a[data-testid='Heading']",
				Description: "p[data-testid='Description']",
				Category:    "span[data-testid='KickerLabel']",
				Date:        "time",
				Image:       "img",
			},
			Detail: DetailSelectors{
				Content: "article",
				Title:   "h1",
				Author:  "a[rel='author']",
				Date:    "time",
				Noise:   "aside, figure[class*='ad'], div[class*='share'], script, style",
			},
		},
		{
			Name:       "apnews",
			ListingURL: "https://apnews.com/hub/world-news",
			FeedURLs: []string{
				"https://apnews.com/hub/world-news/rss",
			},
			ArticlePatterns: []string{"/article/"},
			Enabled:         true,
			List: ListSelectors{
				Container:   "main",
				Item:        "div.PagePromo",
				Title:       "h3.PagePromo-title",
				Link:        "a.Link",
				Description: "div.PagePromo-description",
				Date:        "bsp-timestamp",
				Image:       "img",
			},
			Detail: DetailSelectors{
				Content: "div.RichTextStoryBody",
				Title:   "h1.Page-headline",
				Author:  "div.Page-authors",
				Date:    "div.Page-dateModified",
				Noise:   "div.Enhancement, figure, script, style",
			},
		},
		{
			Name:            "bbc",
			ListingURL:      "https://www.bbc.com/news",
			FeedURLs:        []string{"https://feeds.bbci.co.uk/news/rss.xml"},
			ArticlePatterns: []string{"/news/articles/", "/news/live/"},
			Enabled:         true,
			List: ListSelectors{
				Container:   "main",
				Item:        "div[data-testid='card-text-wrapper']",
				Title:       "h2[data-testid='card-headline']",
				Link:        "a[data-testid='internal-link']",
				Description: "p[data-testid='card-description']",
				Category:    "span[data-testid='card-metadata-tag']",
				Date:        "span[data-testid='card-metadata-lastupdated']",
				Image:       "img",
			},
			Detail: DetailSelectors{
				Content: "article",
				Title:   "h1",
				Author:  "div[data-testid='byline-new-contributors']",
				Date:    "time",
				Noise:   "figure, aside, div[data-component='links-block'], script, style",
			},
		},
		{
			Name:            "guardian",
			ListingURL:      "https://www.theguardian.com/international",
			FeedURLs:        []string{"https://www.theguardian.com/international/rss"},
			ArticlePatterns: []string{"/world/", "/politics/", "/environment/"},
			Enabled:         true,
			List: ListSelectors{
				Container:   "main",
				Item:        "li[data-link-name*='card']",
				Title:       "h3 span",
				Link:        "a[data-link-name='article']",
				Description: "div[data-gu-name='standfirst']",
				Date:        "time",
				Image:       "img",
			},
			Detail: DetailSelectors{
				Content: "div[data-gu-name='body']",
				Title:   "h1",
				Author:  "a[rel='author']",
				Date:    "details summary + div, time",
				Noise:   "figure, aside, gu-island, script, style",
			},
		},
	}
}
