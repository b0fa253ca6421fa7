package relic

import "fmt"

// Config is a typed-path settings bag. Every reader of a path must agree
// on its type; mismatches are programming errors and panic rather than
// being silently coerced.
type Config map[string]*cfgVal

// NewConfig creates a configuration object primed with default heap,
// debug, log and JIT settings. The runtime, the compiler, the JIT driver
// and the CLI do not read a Config; they use their own built-in values.
func NewConfig() *Config {
	m := make(Config)
	m.SetInt("heap.initial_size", 1024)
	m.SetBool("debug.enabled", false)
	m.SetString("log.level", "ERROR")
	m.SetString("jit.cc", "cc")
	m.SetString("jit.tmp_dir", "/tmp/relic")
	m.SetString("jit.lib_dir", "./lib")
	m.SetString("jit.c_runtime_include", "c_runtime")
	return &m
}

type cfgValType int

const (
	cfgValType_Undefined cfgValType = iota
	cfgValType_Bool
	cfgValType_Int
	cfgValType_String
)

func (vt cfgValType) String() string {
	return map[cfgValType]string{
		cfgValType_Undefined: "undefined",
		cfgValType_Bool:      "bool",
		cfgValType_Int:       "int",
		cfgValType_String:    "string",
	}[vt]
}

type cfgVal struct {
	typ      cfgValType
	asBool   bool
	asInt    int
	asString string
}

// assignType guards against a path switching types across the program's
// lifetime; it is cheaper to catch that here than to debug a wrong read.
func (v *cfgVal) assignType(vt cfgValType) {
	if v.typ != vt && v.typ != cfgValType_Undefined {
		panic(fmt.Sprintf("config: can't assign %s to %s path", vt, v.typ))
	}
	v.typ = vt
}

func (v *cfgVal) checkType(vt cfgValType) {
	if v.typ != vt {
		panic(fmt.Sprintf("config: can't read %s from %s path", vt, v.typ))
	}
}

func (c *Config) SetBool(path string, v bool) {
	if (*c)[path] == nil {
		(*c)[path] = &cfgVal{}
	}
	(*c)[path].assignType(cfgValType_Bool)
	(*c)[path].asBool = v
}

func (c *Config) SetInt(path string, v int) {
	if (*c)[path] == nil {
		(*c)[path] = &cfgVal{}
	}
	(*c)[path].assignType(cfgValType_Int)
	(*c)[path].asInt = v
}

func (c *Config) SetString(path string, v string) {
	if (*c)[path] == nil {
		(*c)[path] = &cfgVal{}
	}
	(*c)[path].assignType(cfgValType_String)
	(*c)[path].asString = v
}

func (c *Config) GetBool(path string) bool {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValType_Bool)
		return val.asBool
	}
	panic(fmt.Sprintf("config: bool path %q does not exist", path))
}

func (c *Config) GetInt(path string) int {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValType_Int)
		return val.asInt
	}
	panic(fmt.Sprintf("config: int path %q does not exist", path))
}

func (c *Config) GetString(path string) string {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValType_String)
		return val.asString
	}
	panic(fmt.Sprintf("config: string path %q does not exist", path))
}
