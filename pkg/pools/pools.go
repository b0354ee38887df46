// Package pools recycles the byte buffers that position frames are encoded
// into, so a running broadcast does not allocate a fresh message per tick.
package pools
