// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/libctl/internal/meta"
)

const bashCompletionScript = `# bash completion for libctl
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_libctl()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "list get create update delete borrow summary ui completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    local base="--api --timeout --examples --tldr"
    local common="$base --attrs -a --color -c --filter -f --output -o --sort -s --titles -t --schema"
    local book="--title --author --genre --isbn --description --copies"

    case "$cmd" in
        list)
            local opts="$common --page --limit -l --all"
            ;;
        get|summary)
            local opts="$common"
            ;;
        create|update)
            local opts="$common $book"
            ;;
        delete)
            local opts="$base --yes -y"
            ;;
        borrow)
            local opts="$common --quantity -q --due"
            ;;
        ui)
            local opts="$base"
            if [[ "$cur" == /* ]]; then
                COMPREPLY=( $(compgen -W "/ /books /create-book /borrow-summary" -- "$cur") )
                return 0
            fi
            ;;
        completion)
            local opts="bash zsh"
            COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
            return 0
            ;;
        *)
            local opts="$common"
            ;;
    esac

    if [[ "$prev" == "--output" || "$prev" == "-o" ]]; then
        COMPREPLY=( $(compgen -W "text json raw yaml" -- "$cur") )
        return 0
    fi

    if [[ "$prev" == "--genre" ]]; then
        COMPREPLY=( $(compgen -W "FICTION NON_FICTION SCIENCE HISTORY BIOGRAPHY FANTASY" -- "$cur") )
        return 0
    fi

    COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
    return 0
}

complete -F _libctl libctl
`

const zshCompletionScript = `#compdef libctl

_libctl() {
  local -a cmds
  cmds=(
    'list:list books'
    'get:show one book'
    'create:add a book'
    'update:change a book'
    'delete:delete a book'
    'borrow:borrow copies of a book'
    'summary:borrowed books summary'
    'ui:interactive screens'
    'completion:generate shell completion script'
  )

  local -a base common book
  base=(
  '--api[base URL of the library service]:url'
  '--timeout[per request timeout]:duration'
  '--examples[show usage examples]'
  '--tldr[show tldr page]'
  )
  common=(
  $base
  '(-a --attrs)'{-a,--attrs}'[attributes to include]:attrs'
  '(-c --color)'{-c,--color}'[enable colored text]'
  '(-f --filter)'{-f,--filter}'[filters to apply]:filters'
  '(-o --output)'{-o,--output}'[output format]:format:(text json raw yaml)'
  '(-s --sort)'{-s,--sort}'[sort attributes]:attrs'
  '(-t --titles)'{-t,--titles}'[show titles]'
  '--schema[dump attributes]'
  )
  book=(
  '--title[book title]:title'
  '--author[book author]:author'
  '--genre[genre]:genre:(FICTION NON_FICTION SCIENCE HISTORY BIOGRAPHY FANTASY)'
  '--isbn[ISBN]:isbn'
  '--description[description]:description'
  '--copies[number of copies]:copies'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'libctl commands' cmds
    return
  fi

  local curcontext="$curcontext" state line
  case $words[2] in
    list)
      _arguments -C $common \
        '--page[page to show]:page' \
        '(-l --limit)'{-l,--limit}'[books per page]:limit' \
        '--all[walk every page]'
      ;;
    get|summary)
      _arguments -C $common '1::id'
      ;;
    create)
      _arguments -C $common $book
      ;;
    update)
      _arguments -C $common $book '1:id'
      ;;
    delete)
      _arguments -C $base '(-y --yes)'{-y,--yes}'[do not ask]' '1:id'
      ;;
    borrow)
      _arguments -C $common \
        '(-q --quantity)'{-q,--quantity}'[copies to borrow]:quantity' \
        '--due[due date]:date' \
        '1:book id'
      ;;
    ui)
      _arguments -C $base '1::path:(/ /books /create-book /borrow-summary)'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
    *)
      _arguments -C $common
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _libctl libctl
`

func CompletionCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	switch shell {
	case "bash":
		fmt.Fprint(m.Stdout(), bashCompletionScript)
	case "zsh":
		fmt.Fprint(m.Stdout(), zshCompletionScript)
	default:
		// Try to detect from SHELL or print help
		sh := os.Getenv("SHELL")
		if strings.HasSuffix(sh, "zsh") {
			fmt.Fprint(m.Stdout(), zshCompletionScript)
		} else if strings.HasSuffix(sh, "bash") {
			fmt.Fprint(m.Stdout(), bashCompletionScript)
		} else {
			fmt.Fprintln(m.Stderr(), "usage: libctl completion [bash|zsh]")
			return nil
		}
	}
	return nil
}

func CompletionCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "libctl completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: CompletionCommandAction,
	}
}
