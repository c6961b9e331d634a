// Copyright 2026 The ExtendibleHashing Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command exthash is an interactive driver for the extendible hash index.
// It reads a bucket capacity, then loops over single-letter commands to
// insert keys, remove keys, and print the directory.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	extendible "github.com/shubhanshu02/ExtendibleHashing"
)

const menu = "\nInput Format:\n" +
	"0  : Exit the program\n" +
	"1 x: Insert an element x (x is an integer)\n" +
	"2 x: Remove an element x (x is an integer)\n" +
	"3  : Print the hash table\n\n"

func main() {
	if err := run(os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(in io.Reader, out io.Writer) error {
	words := bufio.NewScanner(in)
	words.Split(bufio.ScanWords)

	fmt.Fprint(out, "Enter capacity of each bucket:\t")
	capacity, ok := nextInt(words)
	if !ok {
		return errors.New("no bucket capacity given")
	}
	table, err := extendible.New(capacity)
	if err != nil {
		return err
	}

	for {
		fmt.Fprint(out, menu)
		cmd, ok := nextInt(words)
		if !ok {
			return nil
		}
		switch cmd {
		case 0:
			return nil
		case 1:
			x, ok := nextInt(words)
			if !ok {
				return nil
			}
			if _, err := table.Insert(x); err != nil {
				fmt.Fprintln(out, err)
			}
		case 2:
			x, ok := nextInt(words)
			if !ok {
				return nil
			}
			if err := table.Remove(x); err != nil {
				fmt.Fprintln(out, err)
			}
		case 3:
			printTable(out, table)
		default:
			fmt.Fprintln(out, "Invalid Input")
		}
	}
}

// nextInt returns the next integer token, skipping tokens that do not
// parse. A false second return means the input is exhausted.
func nextInt(words *bufio.Scanner) (int, bool) {
	for words.Scan() {
		n, err := strconv.Atoi(words.Text())
		if err == nil {
			return n, true
		}
	}
	return 0, false
}

// printTable writes one block per directory slot, numbered from 1. A
// bucket shared by several slots prints once per slot.
func printTable(out io.Writer, table *extendible.Map) {
	fmt.Fprintln(out)
	for _, view := range table.Snapshot() {
		fmt.Fprintf(out, "Bucket %d / %d\n", view.Slot+1, view.Slots)
		fmt.Fprint(out, "Data:\t")
		for _, k := range view.Keys {
			fmt.Fprintf(out, "%d ", k)
		}
		fmt.Fprint(out, "\n\n")
	}
}
