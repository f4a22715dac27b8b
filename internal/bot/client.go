package bot

import (
	"crypto/tls"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dalnet/sedbot/internal/config"
	"github.com/dalnet/sedbot/internal/history"
	"github.com/dalnet/sedbot/internal/identifier"
	"github.com/ergochat/irc-go/ircevent"
	"github.com/ergochat/irc-go/ircmsg"
	"go.uber.org/zap"
)

// Version information (set at build time or here)
var (
	Version   = "1.0.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// Client connects the processor to an IRC network.
type Client struct {
	conn *ircevent.Connection
	cfg  *config.Config
	log  *zap.Logger

	mu   sync.RWMutex
	proc *Processor
}

// NewClient creates a new IRC client
func NewClient(cfg *config.Config, logger *zap.Logger) (*Client, error) {
	mode, ok := identifier.Parse(cfg.Casemapping)
	if !ok {
		return nil, fmt.Errorf("unknown casemapping %q", cfg.Casemapping)
	}

	c := &Client{
		cfg:  cfg,
		log:  logger,
		proc: NewProcessor(history.NewStore(mode, cfg.HistoryDepth), logger),
	}

	// Create IRC connection
	conn := &ircevent.Connection{
		Server:      fmt.Sprintf("%s:%d", cfg.Server, cfg.Port),
		Nick:        cfg.Nick,
		User:        cfg.Username,
		RealName:    cfg.IRCName,
		Password:    cfg.ServerPass,
		QuitMessage: "Shutting down",
		Debug:       false,
		UseTLS:      false,
		TLSConfig:   &tls.Config{InsecureSkipVerify: true},
	}
	c.conn = conn

	// Register handlers
	c.registerHandlers()

	return c, nil
}

func (c *Client) registerHandlers() {
	// Connected (end of MOTD)
	c.conn.AddCallback("376", c.onConnect)
	c.conn.AddCallback("422", c.onConnect) // MOTD missing is also "connected"

	// Chat traffic
	c.conn.AddCallback("PRIVMSG", c.onPrivMsg)
	c.conn.AddCallback("CTCP_ACTION", c.onAction)

	// Membership changes drive history cleanup
	c.conn.AddCallback("PART", c.onPart)
	c.conn.AddCallback("QUIT", c.onQuit)
	c.conn.AddCallback("KICK", c.onKick)

	// Nick issues
	c.conn.AddCallback("432", c.onNickHeld)  // ERR_ERRONEUSNICKNAME
	c.conn.AddCallback("433", c.onNickInUse) // ERR_NICKNAMEINUSE

	// CTCP VERSION
	c.conn.AddCallback("CTCP_VERSION", c.onCtcpVersion)
}

// Connect initiates the IRC connection
func (c *Client) Connect() error {
	return c.conn.Connect()
}

// Loop runs the IRC event loop (blocking)
func (c *Client) Loop() {
	c.conn.Loop()
}

// Quit disconnects from IRC
func (c *Client) Quit() {
	c.conn.Quit()
}

func (c *Client) onConnect(e ircmsg.Message) {
	c.log.Info("connected to IRC server", zap.String("server", c.cfg.Server))

	// Identify to NickServ
	if c.cfg.NickPass != "" {
		c.conn.Privmsg("NickServ", fmt.Sprintf("IDENTIFY %s %s", c.cfg.Nick, c.cfg.NickPass))
	}

	// Adopt the server's casemapping; nick and channel comparisons must
	// agree with the network or cleanup misses renamed-casing users.
	if token, ok := c.conn.ISupport()["CASEMAPPING"]; ok {
		if mode, ok := identifier.Parse(token); ok {
			c.adoptCasemapping(mode)
		} else {
			c.log.Warn("server advertises unsupported casemapping, keeping configured mode",
				zap.String("casemapping", token))
		}
	}

	for _, channel := range c.cfg.Channels {
		c.conn.Join(channel)
	}

	c.log.Info("bot initialization complete")
}

// adoptCasemapping swaps in a store folding under mode. Connection
// registration happens before any channel traffic, so there is no
// recorded history to lose.
func (c *Client) adoptCasemapping(mode identifier.Casemapping) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.proc.Store().Casemapping() == mode {
		return
	}
	c.log.Info("adopting server casemapping", zap.String("casemapping", mode.String()))
	c.proc = NewProcessor(history.NewStore(mode, c.cfg.HistoryDepth), c.log)
}

func (c *Client) processor() *Processor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.proc
}

func (c *Client) say(target, text string) {
	c.conn.Privmsg(target, text)
}

func (c *Client) onPrivMsg(e ircmsg.Message) {
	if len(e.Params) < 2 {
		return
	}
	target := e.Params[0]
	text := e.Params[1]
	nick := e.Nick()
	if nick == "" || strings.EqualFold(nick, c.conn.CurrentNick()) {
		return
	}

	private := strings.EqualFold(target, c.conn.CurrentNick())
	sender := target
	if private {
		sender = nick
	}

	c.processor().HandleMessage(Event{
		Sender:  sender,
		Nick:    nick,
		Text:    text,
		Private: private,
	}, c.say)
}

func (c *Client) onAction(e ircmsg.Message) {
	if len(e.Params) < 2 {
		return
	}
	target := e.Params[0]
	// The CTCP payload arrives as "ACTION <text>".
	text := strings.TrimPrefix(e.Params[1], "ACTION")
	text = strings.TrimPrefix(text, " ")
	nick := e.Nick()
	if nick == "" || strings.EqualFold(nick, c.conn.CurrentNick()) {
		return
	}

	private := strings.EqualFold(target, c.conn.CurrentNick())
	sender := target
	if private {
		sender = nick
	}

	c.processor().HandleMessage(Event{
		Sender:  sender,
		Nick:    nick,
		Text:    text,
		Private: private,
		Action:  true,
	}, c.say)
}

func (c *Client) onPart(e ircmsg.Message) {
	if len(e.Params) < 1 {
		return
	}
	c.processor().HandleMembership(MembershipEvent{
		Kind:    Part,
		Actor:   e.Nick(),
		Channel: e.Params[0],
	}, c.conn.CurrentNick())
}

func (c *Client) onQuit(e ircmsg.Message) {
	c.processor().HandleMembership(MembershipEvent{
		Kind:  Quit,
		Actor: e.Nick(),
	}, c.conn.CurrentNick())
}

func (c *Client) onKick(e ircmsg.Message) {
	if len(e.Params) < 2 {
		return
	}
	c.processor().HandleMembership(MembershipEvent{
		Kind:    Kick,
		Actor:   e.Nick(),
		Channel: e.Params[0],
		Kicked:  e.Params[1],
	}, c.conn.CurrentNick())
}

func (c *Client) onNickHeld(e ircmsg.Message) {
	if c.conn.CurrentNick() == c.cfg.Alternate {
		return
	}
	c.log.Info("nick is held, switching to alternate", zap.String("alternate", c.cfg.Alternate))
	c.conn.SetNick(c.cfg.Alternate)

	// Schedule nick recovery
	go func() {
		time.Sleep(15 * time.Second)
		c.conn.Privmsg("NickServ", fmt.Sprintf("RELEASE %s %s", c.cfg.Nick, c.cfg.NickPass))
		time.Sleep(2 * time.Second)
		c.conn.SetNick(c.cfg.Nick)
	}()
}

func (c *Client) onNickInUse(e ircmsg.Message) {
	if c.conn.CurrentNick() == c.cfg.Alternate {
		return
	}
	c.log.Info("nick in use, switching to alternate", zap.String("alternate", c.cfg.Alternate))
	c.conn.SetNick(c.cfg.Alternate)

	// Schedule nick recovery
	go func() {
		time.Sleep(15 * time.Second)
		c.conn.Privmsg("NickServ", fmt.Sprintf("GHOST %s %s", c.cfg.Nick, c.cfg.NickPass))
		time.Sleep(2 * time.Second)
		c.conn.SetNick(c.cfg.Nick)
	}()
}

func (c *Client) onCtcpVersion(e ircmsg.Message) {
	nick := e.Nick()
	reply := fmt.Sprintf("sedbot %s (built %s, commit %s)", Version, BuildDate, GitCommit)
	c.conn.SendRaw(fmt.Sprintf("NOTICE %s :\x01VERSION %s\x01", nick, reply))
}
