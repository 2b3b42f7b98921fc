package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHubDropsSlowClientWithoutBlocking(t *testing.T) {
	hub := NewWSHub()
	go hub.Run()

	// 发送缓冲只有一格的慢客户端
	slow := &Client{ID: "slow", Send: make(chan []byte, 1), Hub: hub}
	hub.register <- slow

	// 第一条填满缓冲，第二条触发踢出
	hub.Broadcast([]byte(`{"type":"maintenance_alert"}`))
	hub.Broadcast([]byte(`{"type":"maintenance_alert"}`))

	assert.Eventually(t, func() bool {
		return hub.GetClientCount() == 0
	}, 2*time.Second, 10*time.Millisecond, "slow client should be dropped")

	// 事件循环必须仍然存活：新客户端还能注册进来
	fresh := &Client{ID: "fresh", Send: make(chan []byte, 64), Hub: hub}
	select {
	case hub.register <- fresh:
	case <-time.After(time.Second):
		t.Fatal("hub event loop stopped accepting registrations after a slow client filled its buffer")
	}

	assert.Eventually(t, func() bool {
		return hub.GetClientCount() == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHubBroadcastDeliversToHealthyClients(t *testing.T) {
	hub := NewWSHub()
	go hub.Run()

	client := &Client{ID: "c1", Send: make(chan []byte, 64), Hub: hub}
	hub.register <- client

	assert.Eventually(t, func() bool {
		return hub.GetClientCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	hub.Broadcast([]byte(`{"type":"maintenance_alert"}`))

	select {
	case msg := <-client.Send:
		assert.JSONEq(t, `{"type":"maintenance_alert"}`, string(msg))
	case <-time.After(time.Second):
		t.Fatal("broadcast message never reached the client")
	}
}
