package x11

import (
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/randr"
	"github.com/jezek/xgb/xproto"
	"github.com/pkg/errors"
)

// output is a RandR output as seen by the X server
type output struct {
	name      string
	connected bool
	active    bool
	primary   bool
}

// randrClient queries outputs through the RandR extension
type randrClient struct {
	conn *xgb.Conn
	root xproto.Window
}

func newRandRClient() (*randrClient, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to X server")
	}

	if err := randr.Init(conn); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "RandR extension unavailable")
	}

	setup := xproto.Setup(conn)
	return &randrClient{
		conn: conn,
		root: setup.DefaultScreen(conn).Root,
	}, nil
}

// outputs lists every output in server order
func (c *randrClient) outputs() ([]output, error) {
	res, err := randr.GetScreenResourcesCurrent(c.conn, c.root).Reply()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get screen resources")
	}

	var primary randr.Output
	if reply, err := randr.GetOutputPrimary(c.conn, c.root).Reply(); err == nil {
		primary = reply.Output
	}

	outs := make([]output, 0, len(res.Outputs))
	for _, id := range res.Outputs {
		info, err := randr.GetOutputInfo(c.conn, id, res.ConfigTimestamp).Reply()
		if err != nil {
			return nil, errors.Wrapf(err, "failed to get info for output %d", id)
		}
		outs = append(outs, output{
			name:      string(info.Name),
			connected: info.Connection == randr.ConnectionConnected,
			active:    info.Crtc != 0,
			primary:   id == primary,
		})
	}
	return outs, nil
}

func (c *randrClient) close() {
	c.conn.Close()
}
