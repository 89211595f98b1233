package featurize

import (
	"strings"
	"unicode"

	"github.com/akash-acog/sol/pkg/errors"
)

// atom is one parsed atom before feature encoding.
type atom struct {
	symbol    string
	atomicNum int
	aromatic  bool
	charge    int
	// explicitH is the bracket H count, or -1 when hydrogens are implicit.
	explicitH int
	isotope   int
	// chirality: 0 none, 1 anticlockwise (@), 2 clockwise (@@).
	chirality int
	bracket   bool
	// isHydrogen marks materialized hydrogen nodes.
	isHydrogen bool
}

// bond orders; orderAromatic marks bonds between aromatic atoms.
const (
	orderSingle   = 1
	orderDouble   = 2
	orderTriple   = 3
	orderAromatic = 4
)

type bond struct {
	a, b  int
	order int
	// dir is the stereo marker of a single bond oriented a -> b:
	// 0 none, +1 for '/', -1 for '\'.
	dir int
	// ring and conjugated are filled by perception after parsing.
	ring       bool
	conjugated bool
	// stereo: 0 none, 1 any, 2 Z, 3 E; set on double bonds only.
	stereo int
}

// molecule is the parsed, hydrogen-materialized structure.
type molecule struct {
	atoms []atom
	bonds []bond
	// adj[i] lists bond indices incident to atom i.
	adj [][]int
	// charges holds per-atom partial charges when requested.
	charges []float64
}

// atomicNumbers covers the elements the parser recognises.  Anything else
// lands in the "other" one-hot bin downstream.
var atomicNumbers = map[string]int{
	"H": 1, "He": 2, "Li": 3, "Be": 4, "B": 5, "C": 6, "N": 7, "O": 8,
	"F": 9, "Ne": 10, "Na": 11, "Mg": 12, "Al": 13, "Si": 14, "P": 15,
	"S": 16, "Cl": 17, "Ar": 18, "K": 19, "Ca": 20, "Fe": 26, "Cu": 29,
	"Zn": 30, "As": 33, "Se": 34, "Br": 35, "Sn": 50, "I": 53, "Pt": 78,
}

// defaultValence gives the lowest normal valence used for implicit hydrogen
// counting.  Sulfur and phosphorus hypervalence is handled by never going
// negative, the same approximation a lightweight parser can afford without a
// full chemistry kernel.
var defaultValence = map[int]int{
	1: 1, 5: 3, 6: 4, 7: 3, 8: 2, 9: 1, 15: 3, 16: 2, 17: 1, 35: 1, 53: 1,
}

// aromaticOrganic lists lowercase symbols legal outside brackets.
var aromaticOrganic = map[string]bool{"b": true, "c": true, "n": true, "o": true, "p": true, "s": true}

// ringClosure tracks a half-open ring bond.
type ringClosure struct {
	atom  int
	order int
	dir   int
}

// parseSMILES tokenises a SMILES string into atoms and bonds.  It supports
// the organic subset, bracket atoms with isotope/chirality/H-count/charge,
// branches, single- and two-digit ring closures, directional bond markers,
// and dot-separated fragments.
func parseSMILES(smiles string) (*molecule, error) {
	runes := []rune(smiles)
	m := &molecule{}

	var branchStack []int
	pending := map[int]ringClosure{}
	prev := -1
	nextOrder := 0 // 0 means "unspecified"
	nextDir := 0

	addBond := func(a, b, order, dir int) {
		if order == 0 {
			if m.atoms[a].aromatic && m.atoms[b].aromatic {
				order = orderAromatic
			} else {
				order = orderSingle
			}
		}
		m.bonds = append(m.bonds, bond{a: a, b: b, order: order, dir: dir})
	}

	addAtom := func(a atom) {
		idx := len(m.atoms)
		m.atoms = append(m.atoms, a)
		if prev >= 0 {
			addBond(prev, idx, nextOrder, nextDir)
		}
		prev = idx
		nextOrder = 0
		nextDir = 0
	}

	i := 0
	for i < len(runes) {
		ch := runes[i]
		switch {
		case ch == '(':
			if prev < 0 {
				return nil, errors.New(errors.ErrCodeInvalidSMILES, "branch before any atom").WithDetail(smiles)
			}
			branchStack = append(branchStack, prev)
			i++

		case ch == ')':
			if len(branchStack) == 0 {
				return nil, errors.New(errors.ErrCodeInvalidSMILES, "unmatched closing parenthesis").WithDetail(smiles)
			}
			prev = branchStack[len(branchStack)-1]
			branchStack = branchStack[:len(branchStack)-1]
			i++

		case ch == '-':
			nextOrder = orderSingle
			i++
		case ch == '=':
			nextOrder = orderDouble
			i++
		case ch == '#':
			nextOrder = orderTriple
			i++
		case ch == ':':
			nextOrder = orderAromatic
			i++
		case ch == '/':
			nextOrder = orderSingle
			nextDir = 1
			i++
		case ch == '\\':
			nextOrder = orderSingle
			nextDir = -1
			i++

		case ch == '.':
			prev = -1
			nextOrder = 0
			nextDir = 0
			i++

		case ch == '%':
			if i+2 >= len(runes) || !unicode.IsDigit(runes[i+1]) || !unicode.IsDigit(runes[i+2]) {
				return nil, errors.New(errors.ErrCodeInvalidSMILES, "malformed %% ring closure").WithDetail(smiles)
			}
			num := int(runes[i+1]-'0')*10 + int(runes[i+2]-'0')
			if err := closeRing(m, pending, num, prev, nextOrder, nextDir, smiles); err != nil {
				return nil, err
			}
			nextOrder = 0
			nextDir = 0
			i += 3

		case unicode.IsDigit(ch):
			if err := closeRing(m, pending, int(ch-'0'), prev, nextOrder, nextDir, smiles); err != nil {
				return nil, err
			}
			nextOrder = 0
			nextDir = 0
			i++

		case ch == '[':
			j := i + 1
			for j < len(runes) && runes[j] != ']' {
				j++
			}
			if j >= len(runes) {
				return nil, errors.New(errors.ErrCodeInvalidSMILES, "unclosed bracket atom").WithDetail(smiles)
			}
			a, err := parseBracketAtom(string(runes[i+1:j]), smiles)
			if err != nil {
				return nil, err
			}
			addAtom(a)
			i = j + 1

		case unicode.IsLetter(ch):
			symbol, aromatic, consumed := parseOrganicAtom(runes, i)
			if aromatic && !aromaticOrganic[strings.ToLower(symbol)] {
				return nil, errors.Newf(errors.ErrCodeInvalidSMILES,
					"aromatic symbol %q is not in the organic subset", strings.ToLower(symbol)).WithDetail(smiles)
			}
			num, ok := atomicNumbers[symbol]
			if !ok {
				return nil, errors.Newf(errors.ErrCodeInvalidSMILES, "unknown element %q", symbol).WithDetail(smiles)
			}
			addAtom(atom{symbol: symbol, atomicNum: num, aromatic: aromatic, explicitH: -1})
			i += consumed

		default:
			return nil, errors.Newf(errors.ErrCodeInvalidSMILES, "unexpected character %q", string(ch)).WithDetail(smiles)
		}
	}

	if len(branchStack) != 0 {
		return nil, errors.New(errors.ErrCodeInvalidSMILES, "unclosed branch").WithDetail(smiles)
	}
	if len(pending) != 0 {
		return nil, errors.New(errors.ErrCodeInvalidSMILES, "unclosed ring bond").WithDetail(smiles)
	}
	if len(m.atoms) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyMolecule, "SMILES contains no atoms").WithDetail(smiles)
	}
	return m, nil
}

// closeRing opens a ring-closure number or, on its second occurrence, creates
// the ring bond back to the opening atom.
func closeRing(m *molecule, pending map[int]ringClosure, num, prev, order, dir int, smiles string) error {
	if prev < 0 {
		return errors.New(errors.ErrCodeInvalidSMILES, "ring closure before any atom").WithDetail(smiles)
	}
	if open, ok := pending[num]; ok {
		delete(pending, num)
		if open.atom == prev {
			return errors.Newf(errors.ErrCodeInvalidSMILES, "ring closure %d bonds an atom to itself", num).WithDetail(smiles)
		}
		// Bond order may be written at either end; they must not conflict.
		if open.order != 0 && order != 0 && open.order != order {
			return errors.Newf(errors.ErrCodeInvalidSMILES, "conflicting bond orders on ring closure %d", num).WithDetail(smiles)
		}
		if order == 0 {
			order = open.order
		}
		if dir == 0 {
			dir = -open.dir
		}
		if order == 0 {
			if m.atoms[open.atom].aromatic && m.atoms[prev].aromatic {
				order = orderAromatic
			} else {
				order = orderSingle
			}
		}
		m.bonds = append(m.bonds, bond{a: open.atom, b: prev, order: order, dir: dir})
		return nil
	}
	pending[num] = ringClosure{atom: prev, order: order, dir: dir}
	return nil
}

// parseOrganicAtom reads a bare (non-bracket) atom at position i and returns
// its symbol, aromaticity and rune count.
func parseOrganicAtom(runes []rune, i int) (string, bool, int) {
	ch := runes[i]
	aromatic := unicode.IsLower(ch)
	upper := unicode.ToUpper(ch)

	// Two-letter elements written outside brackets: Cl and Br.
	if !aromatic && i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
		two := string([]rune{upper, runes[i+1]})
		if two == "Cl" || two == "Br" {
			return two, false, 2
		}
	}
	return string(upper), aromatic, 1
}

// parseBracketAtom parses "[isotope symbol chirality Hcount charge]" content.
func parseBracketAtom(content, smiles string) (atom, error) {
	runes := []rune(content)
	a := atom{bracket: true, explicitH: 0}
	i := 0

	for i < len(runes) && unicode.IsDigit(runes[i]) {
		a.isotope = a.isotope*10 + int(runes[i]-'0')
		i++
	}

	if i >= len(runes) || !unicode.IsLetter(runes[i]) {
		return atom{}, errors.New(errors.ErrCodeInvalidSMILES, "bracket atom has no element symbol").WithDetail(smiles)
	}
	start := i
	a.aromatic = unicode.IsLower(runes[i])
	i++
	if i < len(runes) && unicode.IsLower(runes[i]) && !a.aromatic {
		i++
	}
	sym := string(runes[start:i])
	if a.aromatic {
		sym = strings.ToUpper(sym[:1]) + sym[1:]
	}
	a.symbol = sym
	a.atomicNum = atomicNumbers[sym]
	if a.atomicNum == 0 {
		return atom{}, errors.Newf(errors.ErrCodeInvalidSMILES, "unknown element %q", sym).WithDetail(smiles)
	}
	if a.atomicNum == 1 {
		a.isHydrogen = true
	}

	for i < len(runes) {
		switch runes[i] {
		case '@':
			if i+1 < len(runes) && runes[i+1] == '@' {
				a.chirality = 2
				i += 2
			} else {
				a.chirality = 1
				i++
			}
		case 'H':
			a.explicitH = 1
			i++
			if i < len(runes) && unicode.IsDigit(runes[i]) {
				a.explicitH = int(runes[i] - '0')
				i++
			}
		case '+':
			a.charge = 1
			i++
			for i < len(runes) && runes[i] == '+' {
				a.charge++
				i++
			}
			if i < len(runes) && unicode.IsDigit(runes[i]) {
				a.charge = int(runes[i] - '0')
				i++
			}
		case '-':
			a.charge = -1
			i++
			for i < len(runes) && runes[i] == '-' {
				a.charge--
				i++
			}
			if i < len(runes) && unicode.IsDigit(runes[i]) {
				a.charge = -int(runes[i] - '0')
				i++
			}
		default:
			return atom{}, errors.Newf(errors.ErrCodeInvalidSMILES,
				"unexpected character %q in bracket atom", string(runes[i])).WithDetail(smiles)
		}
	}
	return a, nil
}
