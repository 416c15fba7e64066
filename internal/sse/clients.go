// Package sse fans store change notifications out to Server-Sent Events
// clients.
package sse

import (
	"sync"
)

// Client receives messages for one topic. An empty topic receives every
// message.
type Client struct {
	Msg   chan string
	Topic string
}

func NewClient(topic string) *Client {
	return &Client{
		Msg:   make(chan string, 8),
		Topic: topic,
	}
}

type SSEClients struct {
	clients map[*Client]bool
	mu      sync.RWMutex
}

func NewSSEClients() *SSEClients {
	return &SSEClients{
		clients: make(map[*Client]bool),
	}
}

func (s *SSEClients) Add(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[client] = true
}

// Delete unregisters client and closes its channel.
func (s *SSEClients) Delete(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clients[client] {
		delete(s.clients, client)
		close(client.Msg)
	}
}

func (s *SSEClients) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Broadcast sends msg to every client subscribed to topic. Slow clients
// miss messages instead of blocking the sender.
func (s *SSEClients) Broadcast(topic, msg string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for client := range s.clients {
		if client.Topic == "" || client.Topic == topic {
			select {
			case client.Msg <- msg:
			default:
			}
		}
	}
}
