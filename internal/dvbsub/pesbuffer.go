package dvbsub

import "github.com/snapetech/subtitlecore/internal/timing"

// PesPacket is one PES payload queued for subtitle decoding, timestamped
// with the PTS carried in its PES header (if any).
type PesPacket struct {
	PTS  timing.StcTime
	Data []byte
}

// PesBuffer is a small FIFO of pending PES packets, drained by the timing
// gate one packet at a time. The reference decoder bounds this queue; this
// port leaves sizing to the caller (typically one PID's worth of packets
// between draws) rather than hard-coding a depth.
type PesBuffer struct {
	packets []PesPacket
}

// Push enqueues a packet.
func (b *PesBuffer) Push(p PesPacket) {
	b.packets = append(b.packets, p)
}

// Len reports the number of queued packets.
func (b *PesBuffer) Len() int { return len(b.packets) }

// Front returns the oldest queued packet without removing it.
func (b *PesBuffer) Front() (PesPacket, bool) {
	if len(b.packets) == 0 {
		return PesPacket{}, false
	}
	return b.packets[0], true
}

// Pop removes and discards the oldest queued packet.
func (b *PesBuffer) Pop() {
	if len(b.packets) == 0 {
		return
	}
	b.packets = b.packets[1:]
}
