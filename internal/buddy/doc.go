// Package buddy decodes the buddy-allocator bookkeeping of a .DS_Store
// container and resolves logical block identifiers to byte ranges.
//
// The container is a self-contained arena of power-of-two sized blocks.
// A fixed header names the bookkeeping block, which holds the block
// descriptor table, a small directory of named blocks, and one free list
// per allocation order.
package buddy
