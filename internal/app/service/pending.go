package service

import (
	"sync"
	"time"
)

// PendingRequests: set de message IDs esperando una reacción ✅/❌.
// Cada entrada lleva su timer de expiración; Add es check-and-set
// atómico y Remove tolera claves ausentes (la resolución y la expiry
// pueden correr en cualquier orden).
type PendingRequests struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewPendingRequests() *PendingRequests {
	return &PendingRequests{timers: map[string]*time.Timer{}}
}

// Add registra el mensaje y agenda onExpire tras ttl. Devuelve false si
// el ID ya estaba registrado (no se agenda nada en ese caso).
func (p *PendingRequests) Add(id string, ttl time.Duration, onExpire func()) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.timers[id]; ok {
		return false
	}
	p.timers[id] = time.AfterFunc(ttl, func() {
		// si una resolución ganó la carrera, el remove falla y no expiramos
		if p.Remove(id) {
			onExpire()
		}
	})
	return true
}

// Remove saca el ID del set y frena su timer. No-op si no estaba.
func (p *PendingRequests) Remove(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	t, ok := p.timers[id]
	if !ok {
		return false
	}
	delete(p.timers, id)
	t.Stop()
	return true
}

func (p *PendingRequests) Contains(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.timers[id]
	return ok
}

func (p *PendingRequests) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.timers)
}

// Clear frena todos los timers; se usa al (re)conectar el gateway.
func (p *PendingRequests) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, t := range p.timers {
		t.Stop()
		delete(p.timers, id)
	}
}
