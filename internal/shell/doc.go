// Package shell puts exposed toolchain binaries on the user's PATH.
//
// `rustboot env <shell>` prints a snippet that prepends the bin directory to
// PATH once; users evaluate it from their rc file:
//
//	eval "$(rustboot env bash)"       # bash, zsh
//	rustboot env fish | source        # fish
//
// Shell detection tries $SHELL, then the parent process (via gopsutil).
//
// The Manager can add the activation line itself. rc files are modified
// idempotently: an existing activation line is left alone, the new content
// is written to a temporary file and renamed into place, and a symlinked rc
// file is written through rather than replaced.
//   - bash: ~/.bashrc
//   - zsh: ~/.zshrc
//   - fish: ~/.config/fish/config.fish
package shell
