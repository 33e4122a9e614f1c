package core

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/encodeous/dvnet/state"
)

// PacketChannel is the in-memory delivery layer between nodes. Delivery is reliable but
// unordered, every packet is delayed by Latency plus a random amount up to Jitter.
type PacketChannel struct {
	Latency time.Duration
	Jitter  time.Duration
	net     *Network
	wg      sync.WaitGroup
}

func (c *PacketChannel) delay() time.Duration {
	d := c.Latency
	if c.Jitter > 0 {
		d += rand.N(c.Jitter)
	}
	return d
}

// Send schedules the packet for delivery to pkt.Dst, it never blocks the sender
func (c *PacketChannel) Send(pkt state.Packet) {
	if int(pkt.Dst) < 0 || int(pkt.Dst) >= len(c.net.nodes) {
		panic("packet addressed to unknown node " + pkt.String())
	}
	c.net.pending.Add(1)
	c.net.Stats.Sent.Add(1)
	simLat := c.delay()
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if simLat != 0 {
			timer := time.NewTimer(simLat)
			defer timer.Stop()
			select {
			case <-c.net.ctx.Done():
				c.net.pending.Add(-1)
				return
			case <-timer.C:
			}
		}
		handle := routerHandleUpdate(pkt)
		c.net.dispatch(pkt.Dst, func(s *state.State) error {
			c.net.Stats.Delivered.Add(1)
			return handle(s)
		})
	}()
}

// Wait blocks until every packet in flight has been delivered or dropped by a stopped node
func (c *PacketChannel) Wait() {
	c.wg.Wait()
}
