package testutil

import (
	"strings"

	"github.com/cs-au-dk/kea/analysis/cfg"
	"github.com/cs-au-dk/kea/analysis/defs"
)

func str(s string) defs.Key { return defs.ConstString(s) }
func num(i int64) defs.Key  { return defs.ConstInt(i) }

var unknown defs.Key = defs.Unknown{}

// label strips the numeric disambiguator some scenario names carry
// (_ok2 and the like) so the suffix encodes the expectation alone.
func label(name string) string {
	return strings.TrimRight(name, "0123456789")
}

// ExpectReport decodes the expectation label of a scenario name.
// Names ending in _bad expect a report and names ending in _ok expect
// none; the fp_ and fn_ prefixes mark scenarios where the engine is
// knowingly imprecise, inverting the expectation.
func ExpectReport(name string) bool {
	switch {
	case strings.HasPrefix(name, "fp_"):
		return true
	case strings.HasPrefix(name, "fn_"):
		return false
	}
	return strings.HasSuffix(label(name), "_bad")
}

// IsScenario distinguishes labeled scenarios from their helpers.
func IsScenario(name string) bool {
	return strings.HasSuffix(label(name), "_ok") ||
		strings.HasSuffix(label(name), "_bad") ||
		strings.HasPrefix(name, "fp_") ||
		strings.HasPrefix(name, "fn_")
}

// Suite builds the corpus of labeled scenario programs, one function
// graph per scenario plus the helpers they call.
func Suite() *cfg.Program {
	return cfg.NewProgram(
		dictMissingKeyConstStrOk(),
		dictMissingKeyConstStrBad(),
		dictSize1MissingKeyConstStrBad(),
		dictMissingKeyConstStrWithIntKeyBad(),
		dictMissingKeyConstStrStoreIntKeyBad(),
		dictMissingKeyConstStrStoreStrKeyOk(),
		dictSetKeyAfterInitOk(),
		getDict(),
		dictAccessFunCallOk(),
		dictAccessFunCallBad(),
		getVal(),
		dictMissingKeyVarOk(),
		dictMissingKeyDictBuiltinConstMapBad(),
		dictMissingKeyBuiltinEmptyBad(),
		dictMissingKeyBuiltinEmptyListBad(),
		fnDictMissingKeyBuiltinListCompBad(),
		dictMissingKeyNamedArgumentsBad(),
		dictMissingStrKeyInOpOk(),
		dictMissingStrKeyInOpBad(),
		dictMissingStrKeyNotConstInOpOk(),
		dictMissingStrKeyNotConstInOpOk2(),
		dictMissingIntKeyInOpOk(),
		fpDictMissingIntKeyInOpOk(),
		testDictKwargsOk(),
		fnTestStrKeyAccessWithLoopBad(),
		getEntry(),
		fnTestStrKeyParamBad(),
		withExecOk(),
		identity(),
		dictThroughIdentityOk(),
		dictThroughIdentityBad(),
		addName(),
		dictMutatedByCalleeOk(),
		dictAliasWriteOk(),
		dictAliasMissingBad(),
		dictSpreadOk(),
		dictSpreadMissingBad(),
		makeEven(),
		makeOdd(),
		dictRecursiveBuildOk(),
	)
}

// d = dict(name="Alice", age=25, city="New York"); d["name"]
func dictMissingKeyConstStrOk() *cfg.Function {
	b := cfg.NewFunction("dict_missing_key_const_str_ok")
	d, r := b.Var("d"), b.Var("r")
	b.MakeDictKw(d, "name", "age", "city").
		Read(r, d, str("name")).
		Return(r)
	return b.Finish()
}

// d = {"John": 30, "Mary": 28}; d["Samantha"]
func dictMissingKeyConstStrBad() *cfg.Function {
	b := cfg.NewFunction("dict_missing_key_const_str_bad")
	d, r := b.Var("d"), b.Var("r")
	b.MakeDict(d, str("John"), str("Mary")).
		Read(r, d, str("Samantha")).
		Return(r)
	return b.Finish()
}

// d = {"John": 30}; d["Samantha"]
func dictSize1MissingKeyConstStrBad() *cfg.Function {
	b := cfg.NewFunction("dict_size1_missing_key_const_str_bad")
	d, r := b.Var("d"), b.Var("r")
	b.MakeDict(d, str("John")).
		Read(r, d, str("Samantha")).
		Return(r)
	return b.Finish()
}

// d = {"John": 30, "Mary": 28, 1: 234}; d["Samantha"]
func dictMissingKeyConstStrWithIntKeyBad() *cfg.Function {
	b := cfg.NewFunction("dict_missing_key_const_str_with_int_key_bad")
	d, r := b.Var("d"), b.Var("r")
	b.MakeDict(d, str("John"), str("Mary"), num(1)).
		Read(r, d, str("Samantha")).
		Return(r)
	return b.Finish()
}

// d = {"John": 30, "Mary": 28}; d[1] = 234; d["Samantha"]
func dictMissingKeyConstStrStoreIntKeyBad() *cfg.Function {
	b := cfg.NewFunction("dict_missing_key_const_str_store_int_key_bad")
	d, r := b.Var("d"), b.Var("r")
	b.MakeDict(d, str("John"), str("Mary")).
		Write(d, num(1)).
		Read(r, d, str("Samantha")).
		Return(r)
	return b.Finish()
}

// Writing through a non-literal string key opens the mapping, so the
// later read cannot be flagged.
func dictMissingKeyConstStrStoreStrKeyOk() *cfg.Function {
	b := cfg.NewFunction("dict_missing_key_const_str_store_str_key_ok", "s")
	d, r, s := b.Var("d"), b.Var("r"), b.Var("s")
	b.MakeDict(d, str("John"), str("Mary")).
		Opaque(s, s).
		Write(d, unknown).
		Read(r, d, str("Samantha")).
		Return(r)
	return b.Finish()
}

// d = {"John": 30, "Mary": 28}; d["Samantha"] = 60; d["Samantha"]
func dictSetKeyAfterInitOk() *cfg.Function {
	b := cfg.NewFunction("dict_set_key_after_init_ok")
	d, r := b.Var("d"), b.Var("r")
	b.MakeDict(d, str("John"), str("Mary")).
		Write(d, str("Samantha")).
		Read(r, d, str("Samantha")).
		Return(r)
	return b.Finish()
}

func getDict() *cfg.Function {
	b := cfg.NewFunction("get_dict")
	d := b.Var("d")
	b.MakeDict(d, str("John"), str("Mary")).
		Return(d)
	return b.Finish()
}

// ages = get_dict(); ages["John"]
func dictAccessFunCallOk() *cfg.Function {
	b := cfg.NewFunction("dict_access_fun_call_ok")
	ages, r := b.Var("ages"), b.Var("r")
	b.Call(ages, "get_dict").
		Read(r, ages, str("John")).
		Return(r)
	return b.Finish()
}

// ages = get_dict(); ages["Samantha"]
func dictAccessFunCallBad() *cfg.Function {
	b := cfg.NewFunction("dict_access_fun_call_bad")
	ages, r := b.Var("ages"), b.Var("r")
	b.Call(ages, "get_dict").
		Read(r, ages, str("Samantha")).
		Return(r)
	return b.Finish()
}

func getVal() *cfg.Function {
	b := cfg.NewFunction("get_val")
	v := b.Var("v")
	b.Opaque(v).
		Return(v)
	return b.Finish()
}

// y = get_val(); d = {"ABC": 1, y: 2}; d[1]
// The non-literal entry key opens the mapping.
func dictMissingKeyVarOk() *cfg.Function {
	b := cfg.NewFunction("dict_missing_key_var_ok")
	y, d, r := b.Var("y"), b.Var("d"), b.Var("r")
	b.Call(y, "get_val").
		MakeDict(d, str("ABC"), unknown).
		Read(r, d, num(1)).
		Return(r)
	return b.Finish()
}

// d = dict({"John": 30, "Mary": 28, 1: 234}); d["missing_key"]
func dictMissingKeyDictBuiltinConstMapBad() *cfg.Function {
	b := cfg.NewFunction("dict_missing_key_dict_builtin_const_map_bad")
	t, d, r := b.Var("t"), b.Var("d"), b.Var("r")
	b.MakeDict(t, str("John"), str("Mary"), num(1)).
		MakeDictCopy(d, t).
		Read(r, d, str("missing_key")).
		Return(r)
	return b.Finish()
}

// d = dict(); d["missing_key"]
func dictMissingKeyBuiltinEmptyBad() *cfg.Function {
	b := cfg.NewFunction("dict_missing_key_builtin_empty_bad")
	d, r := b.Var("d"), b.Var("r")
	b.MakeDictKw(d).
		Read(r, d, str("missing_key")).
		Return(r)
	return b.Finish()
}

// d = dict([]); d["missing_key"]
// The empty pair list is statically enumerable, so the mapping is known
// empty and the read is flagged.
func dictMissingKeyBuiltinEmptyListBad() *cfg.Function {
	b := cfg.NewFunction("dict_missing_key_builtin_empty_list_bad")
	d, r := b.Var("d"), b.Var("r")
	b.MakeDictPairs(d).
		Read(r, d, str("missing_key")).
		Return(r)
	return b.Finish()
}

// d = dict([(x, x) for x in range(10)]); d["missing_key"]
func fnDictMissingKeyBuiltinListCompBad() *cfg.Function {
	b := cfg.NewFunction("fn_dict_missing_key_builtin_list_comp_bad")
	d, r := b.Var("d"), b.Var("r")
	b.MakeDictIter(d).
		Read(r, d, str("missing_key")).
		Return(r)
	return b.Finish()
}

// d = dict(name="Alice", city="New York"); d["missing_key"]
// Keyword names are literal identifiers, so the mapping is closed and
// the read is flagged.
func dictMissingKeyNamedArgumentsBad() *cfg.Function {
	b := cfg.NewFunction("dict_missing_key_named_arguments_bad")
	d, r := b.Var("d"), b.Var("r")
	b.MakeDictKw(d, "name", "city").
		Read(r, d, str("missing_key")).
		Return(r)
	return b.Finish()
}

// if "missing_key" in d: d["missing_key"] else: 0
func dictMissingStrKeyInOpOk() *cfg.Function {
	b := cfg.NewFunction("dict_missing_str_key_in_op_ok")
	t, d, r := b.Var("t"), b.Var("d"), b.Var("r")
	b.MakeDict(t, str("John"), str("Mary"), num(1)).
		MakeDictCopy(d, t).
		IfIn(d, str("missing_key"), func(b *cfg.Builder) {
			b.Read(r, d, str("missing_key")).Return(r)
		}, nil)
	return b.Finish()
}

// if "John" in d: d["missing_key"] else: 0
func dictMissingStrKeyInOpBad() *cfg.Function {
	b := cfg.NewFunction("dict_missing_str_key_in_op_bad")
	t, d, r := b.Var("t"), b.Var("d"), b.Var("r")
	b.MakeDict(t, str("John"), str("Mary"), num(1)).
		MakeDictCopy(d, t).
		IfIn(d, str("John"), func(b *cfg.Builder) {
			b.Read(r, d, str("missing_key")).Return(r)
		}, nil)
	return b.Finish()
}

// k = str(x); d = dict({..., k: "unknown"}); if "missing_key" in d: ...
func dictMissingStrKeyNotConstInOpOk() *cfg.Function {
	b := cfg.NewFunction("dict_missing_str_key_not_const_in_op_ok", "x")
	x, k := b.Var("x"), b.Var("k")
	t, d, r := b.Var("t"), b.Var("d"), b.Var("r")
	b.Opaque(k, x).
		MakeDict(t, str("John"), str("Mary"), num(1), unknown).
		MakeDictCopy(d, t).
		IfIn(d, str("missing_key"), func(b *cfg.Builder) {
			b.Read(r, d, str("missing_key")).Return(r)
		}, nil)
	return b.Finish()
}

// d = dict({...}); k = str(x); d[k] = "unknown"; if "John" in d: ...
func dictMissingStrKeyNotConstInOpOk2() *cfg.Function {
	b := cfg.NewFunction("dict_missing_str_key_not_const_in_op_ok2", "x")
	x, k := b.Var("x"), b.Var("k")
	t, d, r := b.Var("t"), b.Var("d"), b.Var("r")
	b.MakeDict(t, str("John"), str("Mary"), num(1)).
		MakeDictCopy(d, t).
		Opaque(k, x).
		Write(d, unknown).
		IfIn(d, str("John"), func(b *cfg.Builder) {
			b.Read(r, d, str("missing_key")).Return(r)
		}, nil)
	return b.Finish()
}

// if 1 in d: d[1] else: 0
func dictMissingIntKeyInOpOk() *cfg.Function {
	b := cfg.NewFunction("dict_missing_int_key_in_op_ok")
	t, d, r := b.Var("t"), b.Var("d"), b.Var("r")
	b.MakeDict(t, str("John"), str("Mary"), num(1)).
		MakeDictCopy(d, t).
		IfIn(d, num(1), func(b *cfg.Builder) {
			b.Read(r, d, num(1)).Return(r)
		}, nil)
	return b.Finish()
}

// if 2 in d: d["missing"] else: 0
// The guard only refines the tested key, so the unrelated read inside
// the (infeasible) branch is still flagged.
func fpDictMissingIntKeyInOpOk() *cfg.Function {
	b := cfg.NewFunction("fp_dict_missing_int_key_in_op_ok")
	t, d, r := b.Var("t"), b.Var("d"), b.Var("r")
	b.MakeDict(t, str("John"), str("Mary"), num(1)).
		MakeDictCopy(d, t).
		IfIn(d, num(2), func(b *cfg.Builder) {
			b.Read(r, d, str("missing")).Return(r)
		}, nil)
	return b.Finish()
}

// key_dict = {"key1": 1, **({}), "key2": 2}; key_dict["key2"]
// Unpacking a provably empty mapping keeps the literal closed.
func testDictKwargsOk() *cfg.Function {
	b := cfg.NewFunction("test_dict_kwargs_ok")
	t, d, r := b.Var("t"), b.Var("d"), b.Var("r")
	b.MakeDict(t).
		MakeDictSpread(d, []defs.Key{str("key1"), str("key2")}, t).
		Read(r, d, str("key2")).
		Return(r)
	return b.Finish()
}

// for key in ["a", "b", "c"]: print(d[key])
func fnTestStrKeyAccessWithLoopBad() *cfg.Function {
	b := cfg.NewFunction("fn_test_str_key_access_with_loop_bad")
	d, v := b.Var("d"), b.Var("v")
	b.MakeDict(d, str("a"), str("b")).
		Loop(func(b *cfg.Builder) {
			b.Read(v, d, unknown).
				Call(nil, "print", v)
		})
	return b.Finish()
}

func getEntry() *cfg.Function {
	b := cfg.NewFunction("get_entry", "d", "key")
	d, r := b.Var("d"), b.Var("r")
	b.Read(r, d, unknown).
		Return(r)
	return b.Finish()
}

// print(get_entry(d, "c")) -- the faulting read happens in the callee,
// through a parameter-derived key the engine does not resolve.
func fnTestStrKeyParamBad() *cfg.Function {
	b := cfg.NewFunction("fn_test_str_key_param_bad")
	d, k, v := b.Var("d"), b.Var("k"), b.Var("v")
	b.MakeDict(d, str("a"), str("b")).
		Opaque(k).
		Call(v, "get_entry", d, k).
		Call(nil, "print", v)
	return b.Finish()
}

// ns = {}; exec(code); ns["inner"]
// The dynamic-execution carve-out silences the read.
func withExecOk() *cfg.Function {
	b := cfg.NewFunction("with_exec_ok")
	ns, code, r := b.Var("ns"), b.Var("code"), b.Var("r")
	b.MakeDict(ns).
		Opaque(code).
		Exec(ns).
		Read(r, ns, str("inner")).
		Return(r)
	return b.Finish()
}

func identity() *cfg.Function {
	b := cfg.NewFunction("identity", "d")
	b.Return(b.Var("d"))
	return b.Finish()
}

// d2 = identity(d); d2["a"]
func dictThroughIdentityOk() *cfg.Function {
	b := cfg.NewFunction("dict_through_identity_ok")
	d, d2, r := b.Var("d"), b.Var("d2"), b.Var("r")
	b.MakeDict(d, str("a")).
		Call(d2, "identity", d).
		Read(r, d2, str("a")).
		Return(r)
	return b.Finish()
}

// d2 = identity(d); d2["b"]
// The summary records that identity returns its argument, so the result
// keeps the closed abstraction of the caller's mapping.
func dictThroughIdentityBad() *cfg.Function {
	b := cfg.NewFunction("dict_through_identity_bad")
	d, d2, r := b.Var("d"), b.Var("d2"), b.Var("r")
	b.MakeDict(d, str("a")).
		Call(d2, "identity", d).
		Read(r, d2, str("b")).
		Return(r)
	return b.Finish()
}

func addName() *cfg.Function {
	b := cfg.NewFunction("add_name", "d")
	b.Write(b.Var("d"), str("name"))
	return b.Finish()
}

// add_name(d); d["name"]
// The callee may add keys through its parameter, so the caller's mapping
// is opened and the read stays silent.
func dictMutatedByCalleeOk() *cfg.Function {
	b := cfg.NewFunction("dict_mutated_by_callee_ok")
	d, r := b.Var("d"), b.Var("r")
	b.MakeDict(d).
		Call(nil, "add_name", d).
		Read(r, d, str("name")).
		Return(r)
	return b.Finish()
}

// y = x; y["k"] = 1; x["k"]
func dictAliasWriteOk() *cfg.Function {
	b := cfg.NewFunction("dict_alias_write_ok")
	x, y, r := b.Var("x"), b.Var("y"), b.Var("r")
	b.MakeDict(x).
		Assign(y, x).
		Write(y, str("k")).
		Read(r, x, str("k")).
		Return(r)
	return b.Finish()
}

// y = x; y["k"] = 1; x["j"]
func dictAliasMissingBad() *cfg.Function {
	b := cfg.NewFunction("dict_alias_missing_bad")
	x, y, r := b.Var("x"), b.Var("y"), b.Var("r")
	b.MakeDict(x).
		Assign(y, x).
		Write(y, str("k")).
		Read(r, x, str("j")).
		Return(r)
	return b.Finish()
}

// d = {**base, "extra": 1}; d["extra"]
func dictSpreadOk() *cfg.Function {
	b := cfg.NewFunction("dict_spread_ok")
	base, d, r := b.Var("base"), b.Var("d"), b.Var("r")
	b.MakeDict(base, str("a")).
		MakeDictSpread(d, []defs.Key{str("extra")}, base).
		Read(r, d, str("extra")).
		Return(r)
	return b.Finish()
}

// d = {**base, "extra": 1}; d["missing"]
// Spreading a closed mapping keeps the result closed over the union of
// key sets.
func dictSpreadMissingBad() *cfg.Function {
	b := cfg.NewFunction("dict_spread_missing_bad")
	base, d, r := b.Var("base"), b.Var("d"), b.Var("r")
	b.MakeDict(base, str("a")).
		MakeDictSpread(d, []defs.Key{str("extra")}, base).
		Read(r, d, str("missing")).
		Return(r)
	return b.Finish()
}

// Mutually recursive builders; their summaries converge together.
func makeEven() *cfg.Function {
	b := cfg.NewFunction("make_even")
	d := b.Var("d")
	b.If(func(b *cfg.Builder) {
		b.MakeDict(d, str("even")).Return(d)
	}, func(b *cfg.Builder) {
		b.Call(d, "make_odd").Return(d)
	})
	return b.Finish()
}

func makeOdd() *cfg.Function {
	b := cfg.NewFunction("make_odd")
	d := b.Var("d")
	b.If(func(b *cfg.Builder) {
		b.MakeDict(d, str("odd")).Return(d)
	}, func(b *cfg.Builder) {
		b.Call(d, "make_even").Return(d)
	})
	return b.Finish()
}

// d = make_even(); d["missing"]
// The recursive group joins both literals, so the result is open and
// the read stays silent.
func dictRecursiveBuildOk() *cfg.Function {
	b := cfg.NewFunction("dict_recursive_build_ok")
	d, r := b.Var("d"), b.Var("r")
	b.Call(d, "make_even").
		Read(r, d, str("missing")).
		Return(r)
	return b.Finish()
}
