// Package engine manages the PhantomJS binary itself: locating an
// installed executable, downloading and installing a release from the
// pinned manifest, and querying its version.
//
// The driver and browser packages only need a path to a working binary;
// this package is how that path comes to exist. Installs land under
// ~/.phasma by default, giving ~/.phasma/phantomjs/bin/phantomjs.
package engine
