package main

import "github.com/benz9527/xcoll/xlog"

var _ xlog.Banner = xcollBanner{}

type xcollBanner struct{}

func (xcollBanner) JSON() string {
	return `{"app":"xcollbench","desc":"container workload runner"}`
}

func (xcollBanner) PlainText() string {
	return `
 __  _____ ___  _    _      _                  _
 \ \/ / __/ _ \| |  | |    | |__  ___ _ _  __| |_
  >  < (_| (_) | |__| |__  | '_ \/ -_) ' \/ _| ' \
 /_/\_\___\___/|____|____| |_.__/\___|_||_\__|_||_|
`
}
