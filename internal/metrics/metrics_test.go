package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T, r *Registry) string {
	t.Helper()
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Result().Body)
	if err != nil {
		t.Fatalf("读取响应失败: %v", err)
	}
	return string(body)
}

func TestCounterOutput(t *testing.T) {
	r := New()
	r.RecordRequest("POST", "/api/v1/schedule/generate", 200, 50*time.Millisecond)
	r.RecordRequest("POST", "/api/v1/schedule/generate", 200, 80*time.Millisecond)

	body := scrape(t, r)

	want := `fifi_http_requests_total{method="POST",path="/api/v1/schedule/generate",status="200"} 2`
	if !strings.Contains(body, want) {
		t.Errorf("输出缺少计数器样本:\n%s", body)
	}
	if !strings.Contains(body, "# TYPE fifi_http_requests_total counter") {
		t.Errorf("输出缺少TYPE行")
	}
}

func TestHistogramBucketsCumulative(t *testing.T) {
	r := New()
	r.RecordRun("success", "cbc", 700*time.Millisecond)
	r.RecordRun("success", "cbc", 3*time.Second)

	body := scrape(t, r)

	cases := []struct {
		name string
		want string
	}{
		{"0.5桶不含任何观测", `fifi_solve_duration_seconds_bucket{solver="cbc",le="0.5"} 0`},
		{"1桶含第一个观测", `fifi_solve_duration_seconds_bucket{solver="cbc",le="1"} 1`},
		{"5桶累计两个观测", `fifi_solve_duration_seconds_bucket{solver="cbc",le="5"} 2`},
		{"Inf桶累计全部", `fifi_solve_duration_seconds_bucket{solver="cbc",le="+Inf"} 2`},
		{"count为2", `fifi_solve_duration_seconds_count{solver="cbc"} 2`},
	}
	for _, tc := range cases {
		if !strings.Contains(body, tc.want) {
			t.Errorf("%s: 输出缺少 %q\n%s", tc.name, tc.want, body)
		}
	}
}

func TestGaugeWithoutLabels(t *testing.T) {
	r := New()
	r.RecordModelSize(120, 45)

	body := scrape(t, r)
	if !strings.Contains(body, "fifi_model_variables 120") {
		t.Errorf("输出缺少变量数仪表:\n%s", body)
	}
	if !strings.Contains(body, "fifi_model_constraints 45") {
		t.Errorf("输出缺少约束数仪表:\n%s", body)
	}
}

func TestRunStatusCounter(t *testing.T) {
	r := New()
	r.RecordRun("success", "cbc", time.Second)
	r.RecordRun("infeasible", "cbc", time.Second)
	r.RecordRun("infeasible", "cbc", time.Second)

	body := scrape(t, r)
	if !strings.Contains(body, `fifi_schedule_runs_total{status="infeasible"} 2`) {
		t.Errorf("不可行计数错误:\n%s", body)
	}
	if !strings.Contains(body, `fifi_schedule_runs_total{status="success"} 1`) {
		t.Errorf("成功计数错误:\n%s", body)
	}
}
