// Command reelforge builds short social-media montage videos from longer
// source footage by driving the ffmpeg and ffprobe binaries.
package main
