// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command pcs-ctl watches over running PCS lanes: it polls their
// status ports and raises alerts when a link goes and stays down.
package main // import "github.com/go-lpc/pcs/cmd/pcs-ctl"

import (
	"crypto/tls"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-lpc/pcs/baser"
	mail "gopkg.in/gomail.v2"
)

func main() {
	var (
		freq = flag.Duration("freq", 30*time.Second, "probing interval")
	)

	flag.Usage = func() {
		fmt.Printf(`Usage: pcs-ctl [OPTIONS] ADDR1 [ADDR2 [ADDR3 ...]]

ex:
 $> pcs-ctl -freq=10s localhost:8899

options:
`)
		flag.PrintDefaults()
	}

	flag.Parse()

	log.SetPrefix("pcs-ctl: ")
	log.SetFlags(0)

	if flag.NArg() == 0 {
		flag.Usage()
		log.Fatalf("missing status address of lane(s) to watch")
	}

	run(flag.Args(), *freq)
}

type watchdog struct {
	addrs  []string
	freq   time.Duration
	alerts map[string]int // number of alerts raised per lane
}

func run(addrs []string, freq time.Duration) {
	dog := &watchdog{
		addrs:  addrs,
		freq:   freq,
		alerts: make(map[string]int),
	}
	log.Printf("watching %s every %v...", strings.Join(addrs, ", "), freq)
	dog.run()
}

func (dog *watchdog) run() {
	tick := time.NewTicker(dog.freq)
	defer tick.Stop()

	for range tick.C {
		for _, addr := range dog.addrs {
			st, err := probe(addr, dog.freq/2)
			if err != nil {
				log.Printf("could not probe %q: %+v", addr, err)
				dog.alert(addr, fmt.Sprintf("lane unreachable: %+v", err))
				continue
			}
			switch {
			case !st.LinkUp:
				dog.alert(addr, fmt.Sprintf(
					"link down (lock=%v hi-ber=%v ber-count=%d)",
					st.Lock, st.HiBER, st.BERCount,
				))
			default:
				dog.alerts[addr] = 0
			}
		}
	}
}

func probe(addr string, timeout time.Duration) (baser.LinkStatus, error) {
	var st baser.LinkStatus

	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return st, fmt.Errorf("could not dial %q: %w", addr, err)
	}
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(timeout))
	err = json.NewDecoder(conn).Decode(&st)
	if err != nil {
		return st, fmt.Errorf("could not decode status from %q: %w", addr, err)
	}
	return st, nil
}

func (dog *watchdog) alert(addr, msg string) {
	log.Printf("lane %q: %s", addr, msg)
	dog.alerts[addr]++

	const maxAlerts = 5
	if dog.alerts[addr] < maxAlerts {
		dog.alertMail(addr, msg)
	}
}

var (
	alertMailUsr  = os.Getenv("MAIL_USERNAME")
	alertMailPwd  = os.Getenv("MAIL_PASSWORD")
	alertMailSrv  = os.Getenv("MAIL_SERVER")
	alertMailPort = atoi(os.Getenv("MAIL_PORT"))
	alertMailTgts = strings.Split(os.Getenv("MAIL_TGTS"), ",")
)

func (dog *watchdog) alertMail(addr, txt string) {
	if alertMailUsr == "" || alertMailPwd == "" ||
		alertMailSrv == "" || alertMailPort == 0 ||
		len(alertMailTgts) == 0 {
		log.Printf("could not send mail alert: missing credentials")
		return
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", alertMailUsr)
	msg.SetHeader("Bcc", alertMailTgts...)
	msg.SetHeader("Subject", fmt.Sprintf("[pcs-ctl] link alert: %q", addr))
	msg.SetBody("text/plain", fmt.Sprintf("lane: %q\n%s\nfreq: %v",
		addr, txt, dog.freq,
	))

	dial := mail.NewDialer(alertMailSrv, alertMailPort, alertMailUsr, alertMailPwd)
	dial.TLSConfig = &tls.Config{
		InsecureSkipVerify: true,
	}
	err := dial.DialAndSend(msg)
	if err != nil {
		log.Printf("could not send mail alert: %+v", err)
	}
}

func atoi(s string) int {
	if s == "" {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		log.Printf("could not parse %q: %+v", s, err)
		return 0
	}
	return v
}
