// Package logscanner 从交易日志中恢复程序通过 log 自行输出的事件数据。
package logscanner

import (
	"encoding/base64"
	"strings"
)

const (
	programPrefix = "Program "
	dataPrefix    = "Program data: "
	logPrefix     = "Program log: "
	truncatedLine = "Log truncated"
)

// KindData 来自 "Program data:" 行的事件
const KindData = "data"

// Event 一条归属于某程序调用帧的日志事件
type Event struct {
	Program string // 当前栈顶程序（base58）
	Depth   int    // 调用深度，主指令为 1
	Invoke  int    // 所在帧是该程序在日志中的第几次调用，从 0 起计
	Kind    string // KindData 或匹配到的日志前缀（去掉 ": "）
	Raw     string // base64 原文
	Data    []byte // 解码后的数据
	Line    int    // 所在日志行号
}

// Options 扫描选项
type Options struct {
	Programs    []string // 关心的程序 ID，空表示全部
	LogPrefixes []string // 需要捕获的 "Program log:" 前缀，如 "ray_log: "
}

// Result 扫描结果
type Result struct {
	Events    []Event
	Truncated bool // 日志结束时调用栈非空，或出现 "Log truncated"
	Malformed int  // base64 无法解码或调用栈不匹配的行数
}

// InFrame 返回 program 第 invoke 次调用的帧内（不含子调用）输出的 kind 事件
func (r *Result) InFrame(program string, invoke int, kind string) []Event {
	if r == nil {
		return nil
	}
	var out []Event
	for _, e := range r.Events {
		if e.Program == program && e.Invoke == invoke && e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// ByProgram 返回指定程序的事件，保持日志顺序
func (r *Result) ByProgram(program string) []Event {
	if r == nil {
		return nil
	}
	var out []Event
	for _, e := range r.Events {
		if e.Program == program {
			out = append(out, e)
		}
	}
	return out
}

type frame struct {
	program string
	invoke  int
}

func decodeBase64(s string) ([]byte, bool) {
	s = strings.TrimSpace(s)
	if data, err := base64.StdEncoding.DecodeString(s); err == nil {
		return data, true
	}
	if data, err := base64.RawStdEncoding.DecodeString(s); err == nil {
		return data, true
	}
	return nil, false
}

// parseFrame 解析 "Program <id> invoke [n]" / "Program <id> success" / "Program <id> failed: ..."
func parseFrame(line string) (program, action string, ok bool) {
	rest, found := strings.CutPrefix(line, programPrefix)
	if !found {
		return "", "", false
	}
	program, action, found = strings.Cut(rest, " ")
	if !found || program == "" {
		return "", "", false
	}
	switch {
	case strings.HasPrefix(action, "invoke ["):
		return program, "invoke", true
	case action == "success":
		return program, "success", true
	case strings.HasPrefix(action, "failed"):
		return program, "failed", true
	}
	return "", "", false
}

// Scan 按调用栈状态机扫描日志。
// invoke 入栈，success / failed 出栈；data 行与指定前缀的 log 行归属于栈顶程序。
// 日志被截断时不报错，返回截断前收集到的事件。
func Scan(lines []string, opts Options) *Result {
	interest := make(map[string]struct{}, len(opts.Programs))
	for _, p := range opts.Programs {
		interest[p] = struct{}{}
	}
	wanted := func(program string) bool {
		if len(interest) == 0 {
			return true
		}
		_, ok := interest[program]
		return ok
	}

	res := &Result{}
	stack := make([]frame, 0, 8)
	invokes := make(map[string]int)

	capture := func(lineNo int, kind, raw string) {
		if len(stack) == 0 {
			res.Malformed++
			return
		}
		top := stack[len(stack)-1]
		if !wanted(top.program) {
			return
		}
		data, ok := decodeBase64(raw)
		if !ok {
			res.Malformed++
			return
		}
		res.Events = append(res.Events, Event{
			Program: top.program,
			Depth:   len(stack),
			Invoke:  top.invoke,
			Kind:    kind,
			Raw:     raw,
			Data:    data,
			Line:    lineNo,
		})
	}

	for i, line := range lines {
		if payload, ok := strings.CutPrefix(line, dataPrefix); ok {
			capture(i, KindData, payload)
			continue
		}
		if msg, ok := strings.CutPrefix(line, logPrefix); ok {
			for _, prefix := range opts.LogPrefixes {
				if payload, found := strings.CutPrefix(msg, prefix); found {
					capture(i, strings.TrimSuffix(strings.TrimSpace(prefix), ":"), payload)
					break
				}
			}
			continue
		}
		if line == truncatedLine {
			res.Truncated = true
			continue
		}

		program, action, ok := parseFrame(line)
		if !ok {
			continue
		}
		switch action {
		case "invoke":
			stack = append(stack, frame{program: program, invoke: invokes[program]})
			invokes[program]++
		case "success", "failed":
			if len(stack) == 0 || stack[len(stack)-1].program != program {
				res.Malformed++
			}
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	if len(stack) > 0 {
		res.Truncated = true
	}
	return res
}
