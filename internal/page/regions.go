package page

import "golang.org/x/net/html"

// Element ids the page controllers write into.
const (
	IDPostsList   = "posts-list"
	IDLatestPosts = "latest-posts"
	IDPostContent = "post-content"
	IDPostTitle   = "post-title"
	IDPostDate    = "post-date"
	IDPostTags    = "post-tags"
	IDReadingList = "reading-list"
	IDLoading     = "loading"
)

// Regions holds the elements a page exposes to the controllers. A nil
// field means the page has no such region.
type Regions struct {
	PostsList   *html.Node
	LatestPosts *html.Node
	PostContent *html.Node
	PostTitle   *html.Node
	PostDate    *html.Node
	PostTags    *html.Node
	ReadingList *html.Node
	Loading     *html.Node
}

// RegionsFrom looks every region up by id.
func RegionsFrom(d *Document) Regions {
	return Regions{
		PostsList:   d.ElementByID(IDPostsList),
		LatestPosts: d.ElementByID(IDLatestPosts),
		PostContent: d.ElementByID(IDPostContent),
		PostTitle:   d.ElementByID(IDPostTitle),
		PostDate:    d.ElementByID(IDPostDate),
		PostTags:    d.ElementByID(IDPostTags),
		ReadingList: d.ElementByID(IDReadingList),
		Loading:     d.ElementByID(IDLoading),
	}
}
