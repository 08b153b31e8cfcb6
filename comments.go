package protogen

import (
	"slices"

	"github.com/tidwall/btree"
	"google.golang.org/protobuf/types/descriptorpb"
)

// Comment holds the comments the compiler attached to one location.
type Comment struct {
	Leading  string
	Detached []string
}

type commentEntry struct {
	path    []int32
	comment Comment
}

func lessEntry(a, b commentEntry) bool {
	return slices.Compare(a.path, b.path) < 0
}

// CommentTable indexes the commented locations of a file's source code info
// by path. A nil table has no comments.
type CommentTable struct {
	tree *btree.BTreeG[commentEntry]
}

// NewCommentTable builds a table from info. It returns nil if info is nil.
// When several locations share a path, the first one wins.
func NewCommentTable(info *descriptorpb.SourceCodeInfo) *CommentTable {
	if info == nil {
		return nil
	}
	tree := btree.NewBTreeGOptions(lessEntry, btree.Options{NoLocks: true})
	for _, loc := range info.GetLocation() {
		if loc.LeadingComments == nil && len(loc.GetLeadingDetachedComments()) == 0 {
			continue
		}
		e := commentEntry{
			path: slices.Clone(loc.GetPath()),
			comment: Comment{
				Leading:  loc.GetLeadingComments(),
				Detached: loc.GetLeadingDetachedComments(),
			},
		}
		if _, ok := tree.Get(e); ok {
			continue
		}
		tree.Set(e)
	}
	return &CommentTable{tree: tree}
}

// Lookup returns the comment recorded for exactly path.
func (t *CommentTable) Lookup(path []int32) (Comment, bool) {
	if t == nil {
		return Comment{}, false
	}
	e, ok := t.tree.Get(commentEntry{path: path})
	return e.comment, ok
}

// Len returns the number of commented locations.
func (t *CommentTable) Len() int {
	if t == nil {
		return 0
	}
	return t.tree.Len()
}
