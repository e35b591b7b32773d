// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package publisher pipelines counter updates to a redis hash.
package publisher

import (
	"fmt"
	"time"

	"github.com/garyburd/redigo/redis"
)

const Timeout = 500 * time.Millisecond

// Publisher queues HSET commands and sends them on Flush in a single
// round trip.  It is not safe for concurrent use.
type Publisher struct {
	conn redis.Conn
	key  string
	n    int
}

func New(conn redis.Conn, key string) *Publisher {
	return &Publisher{conn: conn, key: key}
}

func Dial(network, address, key string) (*Publisher, error) {
	conn, err := redis.Dial(network, address,
		redis.DialConnectTimeout(Timeout),
		redis.DialReadTimeout(Timeout),
		redis.DialWriteTimeout(Timeout))
	if err != nil {
		return nil, err
	}
	return New(conn, key), nil
}

func (p *Publisher) Key() string { return p.key }

// Print queues field = v.
func (p *Publisher) Print(field string, v interface{}) error {
	if err := p.conn.Send("HSET", p.key, field, v); err != nil {
		return err
	}
	p.n++
	return nil
}

func (p *Publisher) Printf(field, format string, a ...interface{}) error {
	return p.Print(field, fmt.Sprintf(format, a...))
}

// Flush sends queued fields and waits for all replies.
func (p *Publisher) Flush() (err error) {
	if p.n == 0 {
		return
	}
	p.n = 0
	_, err = p.conn.Do("")
	return
}

func (p *Publisher) Close() error {
	err := p.Flush()
	if e := p.conn.Close(); err == nil {
		err = e
	}
	return err
}
