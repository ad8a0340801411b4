// Package driver downloads WebDriver executables and installs them at a
// canonical location.
//
// # Layout
//
// Every driver lives at <root>/<family>/<family>driver, with ".exe" on
// Windows. An existing file at that path short-circuits acquisition, so a
// second Acquire for the same family performs no network access.
//
// # Pipeline
//
//	resolve version -> build target URL -> fetch archive -> extract -> normalize
//
// The archive is downloaded into the family directory and removed once it is
// extracted. The normalizer then locates the single executable inside the
// extracted tree, whatever its upstream name or depth, and moves it to the
// canonical path.
//
// # Usage
//
//	mgr, err := driver.NewManager(driver.Config{
//	    Root:     "drivers",
//	    OSTag:    info.OSTag(),
//	    Resolver: release.NewResolver(feeds, prober),
//	})
//	if err != nil {
//	    return err
//	}
//	res, err := mgr.Acquire(ctx, browser.Chrome, release.LatestPolicy())
//
// Acquisitions of the same family are serialized, in process and across
// processes, by a lock file under <root>/.locks.
package driver
