package entity

// Comment is a text reply attached to exactly one Article and written by one User.
type Comment struct {
	ID        int64
	Content   string
	ArticleID int64
	UserID    int64
}
