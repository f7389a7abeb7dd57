package engine

import (
	"fmt"
	"iter"

	"github.com/roach88/clinicflow/internal/patient"
)

type indexNode struct {
	rec   patient.Record
	left  *indexNode
	right *indexNode
}

// SearchIndex is an unbalanced binary search tree of record copies, built
// fresh for one report and thrown away afterwards. It supports neither
// deletion nor rebalancing.
//
// Equal keys always descend left, so records with equal keys do not come out
// in insertion order.
type SearchIndex struct {
	root  *indexNode
	cmp   patient.Comparator
	count int
}

// NewSearchIndex creates an empty tree ordered by cmp.
func NewSearchIndex(cmp patient.Comparator) *SearchIndex {
	return &SearchIndex{cmp: cmp}
}

// BuildIndex inserts every record from records into a new tree ordered by key.
func BuildIndex(records iter.Seq[patient.Record], key patient.SortKey) (*SearchIndex, error) {
	cmp := key.Compare()
	if cmp == nil {
		return nil, fmt.Errorf("build index: %w: sort key %v", ErrInvalidField, key)
	}
	ix := NewSearchIndex(cmp)
	for rec := range records {
		ix.Insert(rec)
	}
	return ix, nil
}

// Insert adds rec as a new leaf. At each node cmp(rec, node) <= 0 goes left,
// anything greater goes right.
func (ix *SearchIndex) Insert(rec patient.Record) {
	leaf := &indexNode{rec: rec}
	ix.count++

	if ix.root == nil {
		ix.root = leaf
		return
	}

	cur := ix.root
	for {
		if ix.cmp(rec, cur.rec) <= 0 {
			if cur.left == nil {
				cur.left = leaf
				return
			}
			cur = cur.left
		} else {
			if cur.right == nil {
				cur.right = leaf
				return
			}
			cur = cur.right
		}
	}
}

// InOrder yields the records ascending by the tree's comparator
// (left subtree, node, right subtree).
func (ix *SearchIndex) InOrder() iter.Seq[patient.Record] {
	return func(yield func(patient.Record) bool) {
		walk(ix.root, yield)
	}
}

// walk returns false once yield asks to stop.
func walk(n *indexNode, yield func(patient.Record) bool) bool {
	if n == nil {
		return true
	}
	return walk(n.left, yield) && yield(n.rec) && walk(n.right, yield)
}

// Len returns the number of records inserted.
func (ix *SearchIndex) Len() int {
	return ix.count
}
