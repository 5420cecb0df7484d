package protocol

import "bytes"

// FrameDelimiter separates inbound frames on both the client and chunk links.
var FrameDelimiter = []byte("\r\n\r\n")

// Outbound terminators differ per link: client responses close with the full
// delimiter, the chunk link expects a bare newline.
var (
	ClientFrameSuffix = []byte("\r\n\r\n")
	ChunkFrameSuffix  = []byte("\n")
)

// NextFrame extracts the first complete frame from buf. It returns the frame
// without its delimiter, the unconsumed remainder, and whether a complete
// frame was found. Callers keep the remainder as their accumulator and call
// again until found is false.
func NextFrame(buf []byte) (frame, rest []byte, found bool) {
	idx := bytes.Index(buf, FrameDelimiter)
	if idx < 0 {
		return nil, buf, false
	}
	return buf[:idx], buf[idx+len(FrameDelimiter):], true
}
