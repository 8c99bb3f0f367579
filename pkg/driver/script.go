package driver

import (
	"fmt"
	"strings"
	"time"
)

// readySentinel is printed by the bootstrap script exactly once after page
// setup. The controller treats any stdout line containing it as the
// readiness signal.
const readySentinel = "READY"

// navigateFailedMessage is the fixed error message the bootstrap script
// reports when page.open does not succeed.
const navigateFailedMessage = "Failed to load URL"

// screenshotSavedMarker is the fixed result the screenshot action returns.
const screenshotSavedMarker = "Screenshot saved"

// scriptConfig carries everything the generator embeds into the bootstrap
// script as literals.
type scriptConfig struct {
	CommandPath    string
	ResponsePath   string
	ViewportWidth  int
	ViewportHeight int
	PollInterval   time.Duration
	SettleDelay    time.Duration
}

// EscapeJSString escapes s for safe embedding inside a single- or
// double-quoted JavaScript string literal.
func EscapeJSString(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\'`,
		`"`, `\"`,
		"\n", `\n`,
		"\r", `\r`,
	)
	return r.Replace(s)
}

// buildBootstrapScript produces the PhantomJS program that implements the
// engine side of the command protocol: one page with a fixed viewport, the
// READY sentinel on stdout, and a polling loop that reads the command file,
// clears it before dispatch, and writes the id-tagged response.
//
// The close action calls phantom.exit and deliberately writes no response;
// the controller observes process exit instead.
func buildBootstrapScript(cfg scriptConfig) string {
	return fmt.Sprintf(`var page = require('webpage').create();
var fs = require('fs');

page.viewportSize = { width: %d, height: %d };
page.settings.javascriptEnabled = true;
page.settings.localToRemoteUrlAccess = true;

var commandFile = '%s';
var responseFile = '%s';

console.log('%s');

function respond(id, body) {
    body.id = id;
    fs.write(responseFile, JSON.stringify(body), 'w');
}

var lastID = 0;

function processCommands() {
    try {
        if (fs.exists(commandFile)) {
            var content = fs.read(commandFile);
            if (content && content.trim() !== '') {
                var command = JSON.parse(content.trim());
                lastID = command.id || 0;
                var id = lastID;
                var action = command.action;
                var params = command.params || {};

                fs.write(commandFile, '', 'w');

                if (action === 'navigate') {
                    page.open(params.url, function(status) {
                        if (status === 'success') {
                            window.setTimeout(function() {
                                var markup = page.evaluate(function() {
                                    return document.documentElement.outerHTML;
                                });
                                respond(id, { type: 'result', data: markup });
                            }, %d);
                        } else {
                            respond(id, { type: 'error', message: '%s' });
                        }
                    });
                } else if (action === 'evaluate') {
                    var result = page.evaluate(function(expression) {
                        return eval(expression);
                    }, params.expression);
                    respond(id, { type: 'result', data: result });
                } else if (action === 'click') {
                    var clicked = page.evaluate(function(selector) {
                        var el = document.querySelector(selector);
                        if (el) {
                            var event = document.createEvent('MouseEvent');
                            event.initMouseEvent('click', true, true, window, 0, 0, 0, 0, 0, false, false, false, false, 0, null);
                            el.dispatchEvent(event);
                            return true;
                        }
                        return false;
                    }, params.selector);
                    respond(id, { type: 'result', data: clicked });
                } else if (action === 'fill') {
                    var filled = page.evaluate(function(selector, value) {
                        var el = document.querySelector(selector);
                        if (el) {
                            el.value = value;
                            var inputEvent = document.createEvent('Event');
                            inputEvent.initEvent('input', true, true);
                            el.dispatchEvent(inputEvent);
                            var changeEvent = document.createEvent('Event');
                            changeEvent.initEvent('change', true, true);
                            el.dispatchEvent(changeEvent);
                            return true;
                        }
                        return false;
                    }, params.selector, params.value);
                    respond(id, { type: 'result', data: filled });
                } else if (action === 'screenshot') {
                    page.render(params.path);
                    respond(id, { type: 'result', data: '%s' });
                } else if (action === 'close') {
                    phantom.exit(0);
                } else {
                    respond(id, { type: 'error', message: 'Unknown action: ' + action });
                }
            }
        }
    } catch (e) {
        respond(lastID, { type: 'error', message: e.message });
    }

    setTimeout(processCommands, %d);
}

processCommands();
`,
		cfg.ViewportWidth, cfg.ViewportHeight,
		EscapeJSString(cfg.CommandPath),
		EscapeJSString(cfg.ResponsePath),
		readySentinel,
		cfg.SettleDelay.Milliseconds(),
		navigateFailedMessage,
		screenshotSavedMarker,
		cfg.PollInterval.Milliseconds(),
	)
}
