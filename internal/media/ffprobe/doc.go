// Package ffprobe implements the media inspector: duration and dimension
// queries answered by the companion probe tool.
//
// Output that is empty or non-numeric surfaces as a media-unreadable error,
// which callers must treat as fatal for that path since no plan can be built
// around unknown dimensions.
package ffprobe
